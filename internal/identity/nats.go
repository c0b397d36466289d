package identity

import (
	"context"
	"errors"
	"fmt"

	libNats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/channel/nats"
	"github.com/zhulik/tps/internal/core"
)

// NATS verifies that the connection is allowed to use JetStream.
type NATS struct {
	client *nats.Client
	logger logrus.FieldLogger
}

func NewNATS(client *nats.Client, logger logrus.FieldLogger) *NATS {
	return &NATS{
		client: client,
		logger: logger.WithField("component", "identity.NATS"),
	}
}

func (n NATS) Verify(ctx context.Context) (string, error) {
	info, err := n.client.JetStream.AccountInfo(ctx)
	if err != nil {
		if errors.Is(err, libNats.ErrAuthorization) ||
			errors.Is(err, libNats.ErrPermissionViolation) ||
			errors.Is(err, jetstream.ErrJetStreamNotEnabledForAccount) {
			return "", fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
		}

		return "", fmt.Errorf("%w: %w", core.ErrIdentity, err)
	}

	principal := fmt.Sprintf("%s@%s", n.client.Nats.Opts.Name, n.client.Nats.ConnectedUrlRedacted())

	n.logger.WithFields(logrus.Fields{
		"principal": principal,
		"streams":   info.Streams,
		"consumers": info.Consumers,
	}).Info("Caller identity verified")

	return principal, nil
}
