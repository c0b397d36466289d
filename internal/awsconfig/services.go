package awsconfig

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/config"
)

const loadTimeout = 10 * time.Second

func Register(injector *do.Injector) {
	do.Provide(injector, func(injector *do.Injector) (aws.Config, error) {
		cfg := do.MustInvoke[*config.Config](injector)
		logger := do.MustInvoke[logrus.FieldLogger](injector).WithField("component", "awsconfig")

		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		return Load(ctx, cfg.Profile, cfg.Region, logger)
	})
}
