package sqs

import (
	"context"

	awsSQS "github.com/aws/aws-sdk-go-v2/service/sqs"
)

// API is the subset of the SQS client the channel uses.
type API interface {
	GetQueueUrl(ctx context.Context, params *awsSQS.GetQueueUrlInput, optFns ...func(*awsSQS.Options)) (*awsSQS.GetQueueUrlOutput, error)                                     //nolint:lll,revive,stylecheck
	GetQueueAttributes(ctx context.Context, params *awsSQS.GetQueueAttributesInput, optFns ...func(*awsSQS.Options)) (*awsSQS.GetQueueAttributesOutput, error)                //nolint:lll
	SendMessage(ctx context.Context, params *awsSQS.SendMessageInput, optFns ...func(*awsSQS.Options)) (*awsSQS.SendMessageOutput, error)                                     //nolint:lll
	ReceiveMessage(ctx context.Context, params *awsSQS.ReceiveMessageInput, optFns ...func(*awsSQS.Options)) (*awsSQS.ReceiveMessageOutput, error)                            //nolint:lll
	ChangeMessageVisibility(ctx context.Context, params *awsSQS.ChangeMessageVisibilityInput, optFns ...func(*awsSQS.Options)) (*awsSQS.ChangeMessageVisibilityOutput, error) //nolint:lll
	DeleteMessage(ctx context.Context, params *awsSQS.DeleteMessageInput, optFns ...func(*awsSQS.Options)) (*awsSQS.DeleteMessageOutput, error)                               //nolint:lll
}
