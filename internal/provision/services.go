package provision

import (
	"github.com/samber/do"
	"github.com/zhulik/tps/internal/core"
)

func Register(injector *do.Injector) {
	do.Provide(injector, func(injector *do.Injector) (core.Provisioner, error) {
		return New(injector)
	})
}
