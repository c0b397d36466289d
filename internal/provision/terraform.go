package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/command"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
)

const keyComment = "trevorproxy"

// Files terraform leaves next to the configuration.
var stateFiles = []string{ //nolint:gochecknoglobals
	".terraform",
	".terraform.lock.hcl",
	"terraform.tfstate",
	"terraform.tfstate.backup",
}

// Terraform provisions the fleet infrastructure by applying the terraform configuration in dir.
type Terraform struct {
	dir      string
	keyPath  string
	executor command.Executor

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Terraform, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	logger := do.MustInvoke[logrus.FieldLogger](injector)

	return NewTerraform(cfg.TerraformDir, cfg.KeyPath, command.NewExec(logger), logger), nil
}

func NewTerraform(dir, keyPath string, executor command.Executor, logger logrus.FieldLogger) *Terraform {
	return &Terraform{
		dir:      dir,
		keyPath:  keyPath,
		executor: executor,
		logger:   logger.WithField("component", "provision.Terraform"),
	}
}

func (t Terraform) Provision(ctx context.Context, action core.ProvisionAction, params core.ProvisionParams) error {
	logger := t.logger.WithFields(logrus.Fields{
		"action":  action,
		"profile": params.Profile,
	})

	switch action {
	case core.ProvisionActionUp:
		publicKey, err := t.ensureKey(ctx)
		if err != nil {
			return err
		}

		err = t.terraform(ctx, "apply", publicKey, params)
		if err != nil {
			return err
		}
	case core.ProvisionActionDown:
		err := t.terraform(ctx, "destroy", "", params)
		if err != nil {
			return err
		}
	case core.ProvisionActionClean:
		err := t.terraform(ctx, "destroy", "", params)
		if err != nil {
			return err
		}

		err = t.removeState()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", core.ErrUnknownAction, action)
	}

	logger.Info("Infrastructure provisioned")

	return nil
}

func (t Terraform) terraform(ctx context.Context, subcommand, publicKey string, params core.ProvisionParams) error {
	chdir := "-chdir=" + t.dir

	env := []string{}
	if params.Profile != "" {
		env = append(env, "AWS_PROFILE="+params.Profile)
	}

	err := t.executor.Execute(ctx, command.Spec{
		Name: "terraform",
		Args: []string{chdir, "init"},
		Env:  env,
	})
	if err != nil {
		return fmt.Errorf("failed to init terraform: %w", err)
	}

	args := []string{chdir, subcommand, "-auto-approve", "-var", "public_key=" + publicKey}

	if params.Profile != "" {
		args = append(args, "-var", "profile="+params.Profile)
	}

	if params.ProxyCount > 0 {
		args = append(args, "-var", "proxy_count="+strconv.Itoa(params.ProxyCount))
	}

	err = t.executor.Execute(ctx, command.Spec{Name: "terraform", Args: args, Env: env})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", subcommand, err)
	}

	return nil
}

// ensureKey generates the ssh key pair unless it exists and returns the public key.
func (t Terraform) ensureKey(ctx context.Context) (string, error) {
	keyPath, err := core.ExpandHome(t.keyPath)
	if err != nil {
		return "", fmt.Errorf("failed to expand key path: %w", err)
	}

	logger := t.logger.WithField("key", keyPath)

	_, err = os.Stat(keyPath)

	switch {
	case err == nil:
		logger.Info("Using existing SSH key")
	case errors.Is(err, os.ErrNotExist):
		logger.Info("Generating new SSH key pair")

		err = os.MkdirAll(filepath.Dir(keyPath), 0o700) //nolint:mnd
		if err != nil {
			return "", fmt.Errorf("failed to create key directory: %w", err)
		}

		err = t.executor.Execute(ctx, command.Spec{
			Name: "ssh-keygen",
			Args: []string{"-t", "ed25519", "-f", keyPath, "-C", keyComment, "-N", ""},
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate ssh key: %w", err)
		}
	default:
		return "", fmt.Errorf("failed to stat ssh key: %w", err)
	}

	publicKey, err := os.ReadFile(keyPath + ".pub")
	if err != nil {
		return "", fmt.Errorf("failed to read public key: %w", err)
	}

	return strings.TrimSpace(string(publicKey)), nil
}

func (t Terraform) removeState() error {
	for _, name := range stateFiles {
		err := os.RemoveAll(filepath.Join(t.dir, name))
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	t.logger.WithField("dir", t.dir).Info("Local terraform state removed")

	return nil
}
