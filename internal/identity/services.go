package identity

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/channel/nats"
	"github.com/zhulik/tps/internal/core"
)

func RegisterSTS(injector *do.Injector) {
	do.Provide(injector, func(injector *do.Injector) (core.Identity, error) {
		return NewSTS(
			sts.NewFromConfig(do.MustInvoke[aws.Config](injector)),
			do.MustInvoke[logrus.FieldLogger](injector),
		), nil
	})
}

func RegisterNATS(injector *do.Injector) {
	do.Provide(injector, func(injector *do.Injector) (core.Identity, error) {
		return NewNATS(
			do.MustInvoke[*nats.Client](injector),
			do.MustInvoke[logrus.FieldLogger](injector),
		), nil
	})
}
