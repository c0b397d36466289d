package identity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/awsconfig"
	"github.com/zhulik/tps/internal/core"
)

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) //nolint:lll
}

// STS verifies AWS credentials by asking who the caller is.
type STS struct {
	api    STSAPI
	logger logrus.FieldLogger
}

func NewSTS(api STSAPI, logger logrus.FieldLogger) *STS {
	return &STS{
		api:    api,
		logger: logger.WithField("component", "identity.STS"),
	}
}

func (s STS) Verify(ctx context.Context) (string, error) {
	out, err := s.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", awsconfig.Classify(err, core.ErrIdentity)
	}

	principal := aws.ToString(out.Arn)

	s.logger.WithFields(logrus.Fields{
		"account":   aws.ToString(out.Account),
		"principal": principal,
	}).Info("Caller identity verified")

	return principal, nil
}
