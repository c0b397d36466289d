package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "tps",
	Usage:   "Signal demand for an ephemeral proxy fleet and proxy through it once it's ready.",
	Version: VERSION,
	Commands: []*cli.Command{
		runCMD,
		statusCMD,
		infraCMD,
	},
}

func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		stop()
		logrus.Fatal(err)
	}
}
