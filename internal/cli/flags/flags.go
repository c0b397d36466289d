package flags

import (
	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/core"
)

const (
	FlagNameBackend         = "backend"
	FlagNameLogLevel        = "log-level"
	FlagNameProfile         = "profile"
	FlagNameRegion          = "region"
	FlagNameQueue           = "queue"
	FlagNameNATSURL         = "nats-url"
	FlagNameCluster         = "cluster"
	FlagNameFamily          = "family"
	FlagNamePollInterval    = "poll-interval"
	FlagNameMaxWait         = "max-wait"
	FlagNameRenewalInterval = "renewal-interval"
	FlagNameKey             = "key"
	FlagNameListenAddress   = "listen-address"
	FlagNamePort            = "port"
	FlagNameBasePort        = "base-port"
	FlagNameUser            = "user"
	FlagNameInfoPort        = "info-port"
	FlagNameProxyCount      = "proxy-count"
	FlagNameTerraformDir    = "terraform-dir"
)

var (
	Backend = NewBackendFlag()

	LogLevel = &cli.StringFlag{
		Name:    FlagNameLogLevel,
		Usage:   "Set log level to `LEVEL`.",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}

	Profile = &cli.StringFlag{
		Name:    FlagNameProfile,
		Usage:   "Use AWS `PROFILE` from your credentials file.",
		Value:   "tps",
		Sources: cli.EnvVars("AWS_PROFILE"),
	}

	Region = &cli.StringFlag{
		Name:    FlagNameRegion,
		Usage:   "Use AWS `REGION` instead of the profile's one.",
		Sources: cli.EnvVars("AWS_REGION"),
	}

	Queue = &cli.StringFlag{
		Name:    FlagNameQueue,
		Aliases: []string{"q"},
		Usage:   "Signal demand on queue `NAME`.",
		Value:   core.DefaultQueueName,
		Sources: cli.EnvVars("TPS_QUEUE_NAME"),
	}

	NatsURL = &cli.StringFlag{
		Name:    FlagNameNATSURL,
		Aliases: []string{"n"},
		Usage:   "Nats `URL`, eg nats://127.0.0.1:4222. For docker backend only.",
		Value:   "nats://127.0.0.1:4222",
		Sources: cli.EnvVars(core.EnvNameNatsURL),
	}

	Cluster = &cli.StringFlag{
		Name:    FlagNameCluster,
		Usage:   "Fleet `CLUSTER`.",
		Value:   core.DefaultCluster,
		Sources: cli.EnvVars("TPS_CLUSTER"),
	}

	Family = &cli.StringFlag{
		Name:    FlagNameFamily,
		Usage:   "Fleet task `FAMILY`.",
		Value:   core.DefaultFamily,
		Sources: cli.EnvVars("TPS_FAMILY"),
	}

	PollInterval = &cli.DurationFlag{
		Name:    FlagNamePollInterval,
		Usage:   "Check the fleet every `INTERVAL` while waiting for it.",
		Value:   core.DefaultPollInterval,
		Sources: cli.EnvVars("TPS_POLL_INTERVAL"),
	}

	MaxWait = &cli.DurationFlag{
		Name:    FlagNameMaxWait,
		Usage:   "Give up if the fleet is not ready after `DURATION`, 0 waits forever.",
		Value:   core.DefaultMaxWait,
		Sources: cli.EnvVars("TPS_MAX_WAIT"),
	}

	RenewalInterval = &cli.DurationFlag{
		Name:    FlagNameRenewalInterval,
		Usage:   "Extend the demand signal every `INTERVAL`, defaults to half of the visibility timeout.",
		Sources: cli.EnvVars("TPS_RENEWAL_INTERVAL"),
	}

	Key = &cli.StringFlag{
		Name:    FlagNameKey,
		Aliases: []string{"k"},
		Usage:   "Use SSH key `PATH` when connecting to proxy hosts.",
		Value:   core.DefaultKeyPath,
		Sources: cli.EnvVars("TPS_KEY"),
	}

	ListenAddress = &cli.StringFlag{
		Name:    FlagNameListenAddress,
		Aliases: []string{"l"},
		Usage:   "Listen `ADDRESS` for the SOCKS server.",
		Value:   core.DefaultListenAddress,
		Sources: cli.EnvVars("TPS_LISTEN_ADDRESS"),
	}

	Port = &cli.IntFlag{
		Name:    FlagNamePort,
		Aliases: []string{"p"},
		Usage:   "`PORT` for the SOCKS server to listen on.",
		Value:   core.DefaultPort,
		Sources: cli.EnvVars("TPS_PORT"),
	}

	BasePort = &cli.IntFlag{
		Name:    FlagNameBasePort,
		Usage:   "Base listening `PORT` for the per host SOCKS proxies.",
		Value:   core.DefaultBasePort,
		Sources: cli.EnvVars("TPS_BASE_PORT"),
	}

	User = &cli.StringFlag{
		Name:    FlagNameUser,
		Usage:   "SSH `USER` on proxy hosts.",
		Value:   core.DefaultUser,
		Sources: cli.EnvVars("TPS_USER"),
	}

	InfoPort = &cli.IntFlag{
		Name:    FlagNameInfoPort,
		Usage:   "Serve run status on 127.0.0.1:`PORT`, 0 disables it.",
		Sources: cli.EnvVars("TPS_INFO_PORT"),
	}

	ProxyCount = &cli.IntFlag{
		Name:    FlagNameProxyCount,
		Usage:   "The `NUMBER` of SOCKS proxies to spin up.",
		Sources: cli.EnvVars("TPS_PROXY_COUNT"),
	}

	TerraformDir = &cli.StringFlag{
		Name:    FlagNameTerraformDir,
		Usage:   "Terraform configuration `DIR`.",
		Value:   "infra",
		Sources: cli.EnvVars("TPS_TERRAFORM_DIR"),
	}

	Common = []cli.Flag{
		Backend,
		LogLevel,
		Profile,
		Region,
	}

	ForFleet = append(
		Common,
		Queue,
		NatsURL,
		Cluster,
		Family,
		User,
	)

	ForRun = append(
		ForFleet,
		PollInterval,
		MaxWait,
		RenewalInterval,
		Key,
		ListenAddress,
		Port,
		BasePort,
		InfoPort,
	)

	ForInfra = []cli.Flag{
		LogLevel,
		Profile,
		Region,
		Key,
		ProxyCount,
		TerraformDir,
	}
)
