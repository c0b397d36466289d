package nats

import (
	"context"
	"errors"
	"fmt"

	libNats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/samber/do"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
)

func NewClient(injector *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](injector)

	return Connect(cfg.NatsURL())
}

func Connect(url string) (*Client, error) {
	natsClient, err := libNats.Connect(url, libNats.Name("tps"))
	if err != nil {
		if errors.Is(err, libNats.ErrAuthorization) {
			return nil, fmt.Errorf("%w: %w", core.ErrUnauthorized, err)
		}

		return nil, fmt.Errorf("failed to connect to NATS client: %w", err)
	}

	jetStream, err := jetstream.New(natsClient)
	if err != nil {
		natsClient.Close()

		return nil, fmt.Errorf("failed to build JetStream client: %w", err)
	}

	return &Client{
		Nats:      natsClient,
		JetStream: jetStream,
	}, nil
}

type Client struct {
	Nats      *libNats.Conn
	JetStream jetstream.JetStream
}

func (c Client) HealthCheck() error {
	_, err := c.Nats.GetClientID()
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}

	_, err = c.JetStream.AccountInfo(context.Background())
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}

	return nil
}

func (c Client) Shutdown() error {
	c.JetStream.CleanupPublisher()
	c.Nats.Close()

	return nil
}
