package sqs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsSQS "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/zhulik/tps/internal/awsconfig"
	"github.com/zhulik/tps/internal/config"
	"github.com/zhulik/tps/internal/core"
)

const (
	resolveTimeout     = 10 * time.Second
	healthCheckTimeout = 5 * time.Second
	maxWaitSeconds     = 20
)

// Channel is a SignalChannel backed by an SQS FIFO queue.
type Channel struct {
	api      API
	queueURL string

	logger logrus.FieldLogger
}

func New(injector *do.Injector) (*Channel, error) {
	cfg := do.MustInvoke[*config.Config](injector)
	awsCfg := do.MustInvoke[aws.Config](injector)
	logger := do.MustInvoke[logrus.FieldLogger](injector)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	return NewChannel(ctx, awsSQS.NewFromConfig(awsCfg), cfg.QueueName, logger)
}

// NewChannel resolves the queue URL once and returns a ready to use channel.
func NewChannel(ctx context.Context, api API, queueName string, logger logrus.FieldLogger) (*Channel, error) {
	out, err := api.GetQueueUrl(ctx, &awsSQS.GetQueueUrlInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		var notExists *types.QueueDoesNotExist
		if errors.As(err, &notExists) {
			return nil, fmt.Errorf("%w: %s", core.ErrNoSuchQueue, queueName)
		}

		return nil, awsconfig.Classify(err, core.ErrChannel)
	}

	logger = logger.WithFields(logrus.Fields{
		"component": "channel.sqs.Channel",
		"queue":     queueName,
	})

	logger.Debug("Queue resolved")

	return &Channel{
		api:      api,
		queueURL: aws.ToString(out.QueueUrl),
		logger:   logger,
	}, nil
}

func (c Channel) Send(ctx context.Context, body []byte, dedupKey, groupKey string) (string, error) {
	out, err := c.api.SendMessage(ctx, &awsSQS.SendMessageInput{
		QueueUrl:               aws.String(c.queueURL),
		MessageBody:            aws.String(string(body)),
		MessageDeduplicationId: aws.String(dedupKey),
		MessageGroupId:         aws.String(groupKey),
	})
	if err != nil {
		return "", awsconfig.Classify(err, core.ErrChannel)
	}

	c.logger.WithField("dedupKey", dedupKey).Debug("Signal sent")

	return aws.ToString(out.MessageId), nil
}

func (c Channel) Receive(ctx context.Context, maxMessages int, wait time.Duration) ([]core.Message, error) {
	waitSeconds := min(int32(wait/time.Second), maxWaitSeconds) //nolint:gosec

	out, err := c.api.ReceiveMessage(ctx, &awsSQS.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: int32(maxMessages), //nolint:gosec
		WaitTimeSeconds:     waitSeconds,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameMessageDeduplicationId,
		},
	})
	if err != nil {
		return nil, awsconfig.Classify(err, core.ErrChannel)
	}

	return lo.Map(out.Messages, func(msg types.Message, _ int) core.Message {
		return newMessage(msg)
	}), nil
}

func (c Channel) ExtendVisibility(ctx context.Context, msg core.Message, d time.Duration) error {
	_, err := c.api.ChangeMessageVisibility(ctx, &awsSQS.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(c.queueURL),
		ReceiptHandle:     aws.String(msg.Receipt()),
		VisibilityTimeout: int32(d / time.Second), //nolint:gosec
	})
	if err != nil {
		return awsconfig.Classify(err, core.ErrChannel)
	}

	return nil
}

func (c Channel) Delete(ctx context.Context, msg core.Message) error {
	_, err := c.api.DeleteMessage(ctx, &awsSQS.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(msg.Receipt()),
	})
	if err != nil {
		return awsconfig.Classify(err, core.ErrChannel)
	}

	return nil
}

func (c Channel) VisibilityTimeout(ctx context.Context) (time.Duration, error) {
	value, err := c.attribute(ctx, types.QueueAttributeNameVisibilityTimeout)
	if err != nil {
		return 0, err
	}

	if value == 0 {
		return core.DefaultVisibilityTimeout, nil
	}

	return time.Duration(value) * time.Second, nil
}

func (c Channel) Demand(ctx context.Context) (int, error) {
	return c.attribute(ctx, types.QueueAttributeNameApproximateNumberOfMessagesNotVisible)
}

func (c Channel) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	_, err := c.VisibilityTimeout(ctx)
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}

	return nil
}

func (c Channel) Shutdown() error {
	return nil
}

func (c Channel) attribute(ctx context.Context, name types.QueueAttributeName) (int, error) {
	out, err := c.api.GetQueueAttributes(ctx, &awsSQS.GetQueueAttributesInput{
		QueueUrl:       aws.String(c.queueURL),
		AttributeNames: []types.QueueAttributeName{name},
	})
	if err != nil {
		return 0, awsconfig.Classify(err, core.ErrChannel)
	}

	raw, ok := out.Attributes[string(name)]
	if !ok {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse queue attribute %s: %w", core.ErrChannel, name, err)
	}

	return value, nil
}
