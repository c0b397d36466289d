package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/cli/flags"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/di"
	"github.com/zhulik/tps/internal/infoserver"
	"github.com/zhulik/tps/internal/runner"
)

var runCMD = &cli.Command{
	Name:  "run",
	Usage: "Signal demand, wait for the fleet and run trevorproxy through it. The demand is withdrawn on exit.",
	Flags: flags.ForRun,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		err := requireRoot(os.Geteuid())
		if err != nil {
			return err
		}

		injector, err := initDI(cmd)
		if err != nil {
			return err
		}
		defer shutdown(injector)

		cfg, err := invoke[*config.Config](injector)
		if err != nil {
			return err
		}

		run, err := invoke[*runner.Runner](injector)
		if err != nil {
			return err
		}

		if cfg.InfoPort > 0 {
			logger := di.Logger(injector)
			server := infoserver.NewServer(cfg.InfoPort, run, injector, logger)

			go func() {
				err := server.Run(ctx)
				if err != nil {
					logger.WithError(err).Error("Info server failed")
				}
			}()
		}

		return run.Run(ctx) //nolint:wrapcheck
	},
}

// requireRoot rejects non-root users, trevorproxy binds its listeners and routes through the fleet as root.
func requireRoot(euid int) error {
	if euid != 0 {
		return fmt.Errorf("%w: re-run with sudo", core.ErrNotRoot)
	}

	return nil
}
