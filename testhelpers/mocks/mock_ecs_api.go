package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/stretchr/testify/mock"
)

// MockECSAPI is a mock implementation of ecs.ECSAPI.
type MockECSAPI struct {
	mock.Mock
}

func (_m *MockECSAPI) DescribeClusters(ctx context.Context, params *ecs.DescribeClustersInput, _ ...func(*ecs.Options)) (*ecs.DescribeClustersOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[ecs.DescribeClustersOutput](ret)
}

func (_m *MockECSAPI) ListTasks(ctx context.Context, params *ecs.ListTasksInput, _ ...func(*ecs.Options)) (*ecs.ListTasksOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[ecs.ListTasksOutput](ret)
}

func (_m *MockECSAPI) DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, _ ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[ecs.DescribeTasksOutput](ret)
}

// NewMockECSAPI creates a new instance of MockECSAPI. It also registers a testing interface on the mock and a
// cleanup function to assert the mocks expectations.
func NewMockECSAPI(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockECSAPI {
	m := &MockECSAPI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockEC2API is a mock implementation of ecs.EC2API.
type MockEC2API struct {
	mock.Mock
}

func (_m *MockEC2API) DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, _ ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[ec2.DescribeNetworkInterfacesOutput](ret)
}

// NewMockEC2API creates a new instance of MockEC2API. It also registers a testing interface on the mock and a
// cleanup function to assert the mocks expectations.
func NewMockEC2API(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockEC2API {
	m := &MockEC2API{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
