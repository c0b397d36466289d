package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/tps/internal/cli/flags"
	"github.com/zhulik/tps/internal/status"
	"github.com/zhulik/tps/pkg/json"
)

var statusCMD = &cli.Command{
	Name:  "status",
	Usage: "Print demand, fleet tasks and endpoints as JSON. Does not signal demand.",
	Flags: flags.ForFleet,
	Action: func(ctx context.Context, cmd *cli.Command) error {
		injector, err := initDI(cmd)
		if err != nil {
			return err
		}
		defer shutdown(injector)

		collector, err := invoke[*status.Collector](injector)
		if err != nil {
			return err
		}

		report, err := collector.Collect(ctx)
		if err != nil {
			return err //nolint:wrapcheck
		}

		output, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err //nolint:wrapcheck
		}

		_, err = fmt.Fprintln(os.Stdout, string(output))

		return err //nolint:wrapcheck
	},
}
