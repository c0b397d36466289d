package nats

import (
	"github.com/samber/do"
	"github.com/zhulik/tps/internal/core"
)

func Register(injector *do.Injector) {
	do.Provide(injector, NewClient)
	do.Provide(injector, func(injector *do.Injector) (core.SignalChannel, error) {
		return New(injector)
	})
}
