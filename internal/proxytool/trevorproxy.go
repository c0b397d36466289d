package proxytool

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/command"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
)

// Trevorproxy hands the endpoints over to trevorproxy in ssh mode.
type Trevorproxy struct {
	command  string
	executor command.Executor

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Trevorproxy, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	logger := do.MustInvoke[logrus.FieldLogger](injector)

	return NewTrevorproxy(cfg.ProxyCommand, command.NewExec(logger), logger), nil
}

func NewTrevorproxy(cmd string, executor command.Executor, logger logrus.FieldLogger) *Trevorproxy {
	return &Trevorproxy{
		command:  cmd,
		executor: executor,
		logger:   logger.WithField("component", "proxytool.Trevorproxy"),
	}
}

// Args builds: -p <port> -l <listen> ssh -k <key> --base-port <base> user@address...
func (t Trevorproxy) Args(target core.ProxyTarget) ([]string, error) {
	if len(target.Endpoints) == 0 {
		return nil, core.ErrNoEndpoints
	}

	keyPath, err := core.ExpandHome(target.KeyPath)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-p", strconv.Itoa(target.Port),
		"-l", target.ListenAddress,
		"ssh",
		"-k", keyPath,
		"--base-port", strconv.Itoa(target.BasePort),
	}

	return append(args, lo.Map(target.Endpoints, func(e core.Endpoint, _ int) string { return e.Target() })...), nil
}

func (t Trevorproxy) Run(ctx context.Context, target core.ProxyTarget) error {
	args, err := t.Args(target)
	if err != nil {
		return err
	}

	t.logger.WithFields(logrus.Fields{
		"listen":    fmt.Sprintf("%s:%d", target.ListenAddress, target.Port),
		"endpoints": len(target.Endpoints),
	}).Info("Starting proxy")

	return t.executor.Execute(ctx, command.Spec{Name: t.command, Args: args})
}
