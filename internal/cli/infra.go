package cli

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/cli/flags"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
)

var infraCMD = &cli.Command{
	Name:  "infra",
	Usage: "Manage the proxy fleet infrastructure with terraform.",
	Commands: []*cli.Command{
		newInfraCMD(core.ProvisionActionUp, "Generate the SSH key if needed and deploy the fleet."),
		newInfraCMD(core.ProvisionActionDown, "Destroy the fleet."),
		newInfraCMD(core.ProvisionActionClean, "Destroy the fleet and remove local terraform state."),
	},
}

func newInfraCMD(action core.ProvisionAction, usage string) *cli.Command {
	return &cli.Command{
		Name:  action,
		Usage: usage,
		Flags: flags.ForInfra,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			injector, err := initDI(cmd)
			if err != nil {
				return err
			}
			defer shutdown(injector)

			cfg, err := invoke[*config.Config](injector)
			if err != nil {
				return err
			}

			provisioner, err := invoke[core.Provisioner](injector)
			if err != nil {
				return err
			}

			return provisioner.Provision(ctx, action, core.ProvisionParams{ //nolint:wrapcheck
				Profile:    cfg.Profile,
				ProxyCount: cfg.ProxyCount,
			})
		},
	}
}
