package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

const waitDelay = 10 * time.Second

type Spec struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current process environment.
	Env []string
}

func (s Spec) String() string {
	return strings.Join(append([]string{s.Name}, s.Args...), " ")
}

// Executor runs external programs.
type Executor interface {
	Execute(ctx context.Context, spec Spec) error
}

// Exec runs programs attached to the current terminal. On ctx cancellation the program receives SIGINT
// and is killed if it does not exit within a few seconds.
type Exec struct {
	logger logrus.FieldLogger
}

func NewExec(logger logrus.FieldLogger) *Exec {
	return &Exec{
		logger: logger.WithField("component", "command.Exec"),
	}
}

func (e Exec) Execute(ctx context.Context, spec Spec) error {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.WaitDelay = waitDelay
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}

	e.logger.WithField("command", spec.String()).Debug("Running")

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", spec.Name, err)
	}

	return nil
}
