package docker

import (
	"github.com/samber/do"
	"github.com/zhulik/tps/internal/core"
)

func Register(injector *do.Injector) {
	do.Provide(injector, func(injector *do.Injector) (core.Orchestrator, error) {
		return New(injector)
	})
}
