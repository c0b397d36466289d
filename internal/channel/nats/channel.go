package nats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	libNats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
)

const (
	maxBytes       = 10 * 1024 * 1024 // 10MB
	maxMsgs        = 1000
	minFetchWait   = time.Second
	setupTimeout   = 10 * time.Second
	requestTimeout = 5 * time.Second
)

type Options struct {
	StreamName        string
	ConsumerName      string
	VisibilityTimeout time.Duration
	Retention         time.Duration
	DedupWindow       time.Duration
}

// Channel is a SignalChannel backed by a JetStream work queue stream and a shared durable pull consumer.
// Visibility is the consumer's ack wait: a fetched message stays hidden until acked, nacked or the ack
// wait runs out.
type Channel struct {
	nats     *Client
	consumer jetstream.Consumer
	opts     Options

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Channel, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	logger := do.MustInvoke[logrus.FieldLogger](injector)
	client := do.MustInvoke[*Client](injector)

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	return NewChannel(ctx, client, Options{
		StreamName:        cfg.StreamName,
		ConsumerName:      cfg.ConsumerName,
		VisibilityTimeout: cfg.VisibilityTimeout,
		Retention:         cfg.Retention,
		DedupWindow:       cfg.DedupWindow,
	}, logger)
}

// NewChannel creates or updates the stream and the consumer and returns a ready to use channel.
func NewChannel(ctx context.Context, client *Client, opts Options, logger logrus.FieldLogger) (*Channel, error) {
	logger = logger.WithFields(logrus.Fields{
		"component": "channel.nats.Channel",
		"stream":    opts.StreamName,
	})

	_, err := client.JetStream.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       opts.StreamName,
		Subjects:   []string{core.SignalSubjectBase + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.WorkQueuePolicy,
		MaxAge:     opts.Retention,
		MaxMsgs:    maxMsgs,
		MaxBytes:   maxBytes,
		Duplicates: min(opts.DedupWindow, opts.Retention),
		Replicas:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create or update stream: %w", core.ErrChannel, err)
	}

	logger.Debug("Stream created or updated")

	consumer, err := client.JetStream.CreateOrUpdateConsumer(ctx, opts.StreamName, jetstream.ConsumerConfig{
		Durable:       opts.ConsumerName,
		FilterSubject: core.SignalSubjectBase + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       opts.VisibilityTimeout,
		MaxDeliver:    -1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create or update consumer: %w", core.ErrChannel, err)
	}

	logger.WithField("consumer", opts.ConsumerName).Debug("Consumer created or updated")

	return &Channel{
		nats:     client,
		consumer: consumer,
		opts:     opts,
		logger:   logger,
	}, nil
}

func (c Channel) Send(ctx context.Context, body []byte, dedupKey, groupKey string) (string, error) {
	subject := fmt.Sprintf("%s.%s", core.SignalSubjectBase, groupKey)

	ack, err := c.nats.JetStream.Publish(ctx, subject, body, jetstream.WithMsgID(dedupKey))
	if err != nil {
		return "", fmt.Errorf("%w: failed to publish: %w", core.ErrChannel, err)
	}

	c.logger.WithFields(logrus.Fields{
		"dedupKey":  dedupKey,
		"duplicate": ack.Duplicate,
	}).Debug("Signal sent")

	return strconv.FormatUint(ack.Sequence, 10), nil
}

func (c Channel) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]core.Message, error) {
	var (
		batch jetstream.MessageBatch
		err   error
	)

	if wait <= 0 {
		batch, err = c.consumer.FetchNoWait(maxMessages)
	} else {
		batch, err = c.consumer.Fetch(maxMessages, jetstream.FetchMaxWait(max(wait, minFetchWait)))
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch: %w", core.ErrChannel, err)
	}

	messages := []core.Message{}

	for msg := range batch.Messages() {
		messages = append(messages, newMessage(msg))
	}

	if ctx.Err() != nil && len(messages) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrChannel, ctx.Err())
	}

	err = batch.Error()
	if err != nil && !isEmptyFetch(err) {
		return nil, fmt.Errorf("%w: failed to fetch: %w", core.ErrChannel, err)
	}

	return messages, nil
}

// ExtendVisibility resets the ack timer of msg. JetStream always extends by the consumer's ack wait,
// so d only distinguishes between extending (d > 0) and releasing (d == 0).
func (c Channel) ExtendVisibility(ctx context.Context, msg core.Message, d time.Duration) error {
	wrapped, ok := msg.(messageWrapper)
	if !ok {
		return core.ErrNotHeld
	}

	var err error
	if d == 0 {
		err = wrapped.msg.Nak()
	} else {
		err = wrapped.msg.InProgress()
	}

	if err != nil {
		return fmt.Errorf("%w: failed to change visibility: %w", core.ErrChannel, err)
	}

	return nil
}

func (c Channel) Delete(ctx context.Context, msg core.Message) error {
	wrapped, ok := msg.(messageWrapper)
	if !ok {
		return core.ErrNotHeld
	}

	err := wrapped.msg.DoubleAck(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to ack: %w", core.ErrChannel, err)
	}

	return nil
}

func (c Channel) VisibilityTimeout(_ context.Context) (time.Duration, error) {
	return c.consumer.CachedInfo().Config.AckWait, nil
}

func (c Channel) Demand(ctx context.Context) (int, error) {
	info, err := c.consumer.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get consumer info: %w", core.ErrChannel, err)
	}

	return info.NumAckPending, nil
}

func (c Channel) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	_, err := c.consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}

	return nil
}

func (c Channel) Shutdown() error {
	return nil
}

func isEmptyFetch(err error) bool {
	return errors.Is(err, jetstream.ErrNoMessages) ||
		errors.Is(err, libNats.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
