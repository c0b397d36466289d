package di

import (
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/awsconfig"
	"github.com/zhulik/tps/internal/channel/nats"
	"github.com/zhulik/tps/internal/channel/sqs"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
	"github.com/zhulik/tps/internal/identity"
	"github.com/zhulik/tps/internal/logging"
	"github.com/zhulik/tps/internal/orchestrator/docker"
	"github.com/zhulik/tps/internal/orchestrator/ecs"
	"github.com/zhulik/tps/internal/provision"
	"github.com/zhulik/tps/internal/proxytool"
	"github.com/zhulik/tps/internal/runner"
	"github.com/zhulik/tps/internal/status"
)

// New assembles the services of the backend selected in cfg. Services are built lazily on first use.
func New(cfg *config.Config) *do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	logging.Register(injector)

	switch cfg.Backend {
	case core.BackendDocker:
		nats.Register(injector)
		docker.Register(injector)
		identity.RegisterNATS(injector)
	default:
		awsconfig.Register(injector)
		sqs.Register(injector)
		ecs.Register(injector)
		identity.RegisterSTS(injector)
	}

	proxytool.Register(injector)
	provision.Register(injector)
	runner.Register(injector)
	status.Register(injector)

	return injector
}

func Logger(injector *do.Injector) logrus.FieldLogger {
	return do.MustInvoke[logrus.FieldLogger](injector)
}
