package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/mock"
)

// MockSQSAPI is a mock implementation of sqs.API.
type MockSQSAPI struct {
	mock.Mock
}

func (_m *MockSQSAPI) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) { //nolint:lll,revive,stylecheck
	ret := _m.Called(ctx, params)

	return returnOrNil[sqs.GetQueueUrlOutput](ret)
}

func (_m *MockSQSAPI) GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[sqs.GetQueueAttributesOutput](ret)
}

func (_m *MockSQSAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[sqs.SendMessageOutput](ret)
}

func (_m *MockSQSAPI) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[sqs.ReceiveMessageOutput](ret)
}

func (_m *MockSQSAPI) ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[sqs.ChangeMessageVisibilityOutput](ret)
}

func (_m *MockSQSAPI) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[sqs.DeleteMessageOutput](ret)
}

// NewMockSQSAPI creates a new instance of MockSQSAPI. It also registers a testing interface on the mock and a
// cleanup function to assert the mocks expectations.
func NewMockSQSAPI(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockSQSAPI {
	m := &MockSQSAPI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
