package cli

import (
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/cli/flags"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/di"
)

// loadConfig reads the environment and applies the flags the user set on top of it.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if cmd.IsSet(flags.FlagNameBackend) {
		cfg.Backend = fmt.Sprint(cmd.Value(flags.FlagNameBackend))
	}

	override(cmd, flags.FlagNameLogLevel, &cfg.LogLevel, cmd.String)
	override(cmd, flags.FlagNameProfile, &cfg.Profile, cmd.String)
	override(cmd, flags.FlagNameRegion, &cfg.Region, cmd.String)
	override(cmd, flags.FlagNameQueue, &cfg.QueueName, cmd.String)
	override(cmd, flags.FlagNameNATSURL, &cfg.NATSURL, cmd.String)
	override(cmd, flags.FlagNameCluster, &cfg.Cluster, cmd.String)
	override(cmd, flags.FlagNameFamily, &cfg.Family, cmd.String)
	override(cmd, flags.FlagNameUser, &cfg.User, cmd.String)
	override(cmd, flags.FlagNameKey, &cfg.KeyPath, cmd.String)
	override(cmd, flags.FlagNameListenAddress, &cfg.ListenAddress, cmd.String)
	override(cmd, flags.FlagNameTerraformDir, &cfg.TerraformDir, cmd.String)
	override(cmd, flags.FlagNamePollInterval, &cfg.PollInterval, cmd.Duration)
	override(cmd, flags.FlagNameMaxWait, &cfg.MaxWait, cmd.Duration)
	override(cmd, flags.FlagNameRenewalInterval, &cfg.RenewalInterval, cmd.Duration)
	override(cmd, flags.FlagNamePort, &cfg.Port, intValue(cmd))
	override(cmd, flags.FlagNameBasePort, &cfg.BasePort, intValue(cmd))
	override(cmd, flags.FlagNameInfoPort, &cfg.InfoPort, intValue(cmd))
	override(cmd, flags.FlagNameProxyCount, &cfg.ProxyCount, intValue(cmd))

	cfg.MaxPollInterval = max(cfg.MaxPollInterval, cfg.PollInterval)

	err = cfg.Validate()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return cfg, nil
}

func override[T string | int | time.Duration](cmd *cli.Command, name string, dst *T, get func(string) T) {
	if cmd.IsSet(name) {
		*dst = get(name)
	}
}

func intValue(cmd *cli.Command) func(string) int {
	return func(name string) int {
		return int(cmd.Int(name))
	}
}

func initDI(cmd *cli.Command) (*do.Injector, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return di.New(cfg), nil
}

func shutdown(injector *do.Injector) {
	err := injector.Shutdown()
	if err != nil {
		di.Logger(injector).WithError(err).Warn("Failed to shut down services")
	}
}

func invoke[T any](injector *do.Injector) (T, error) {
	service, err := do.Invoke[T](injector)
	if err != nil {
		return service, fmt.Errorf("failed to initialize: %w", err)
	}

	return service, nil
}
