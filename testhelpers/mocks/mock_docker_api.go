package mocks

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/system"
	"github.com/stretchr/testify/mock"
)

// MockDockerAPI is a mock implementation of docker.API.
type MockDockerAPI struct {
	mock.Mock
}

func (_m *MockDockerAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	ret := _m.Called(ctx, options)

	var containers []types.Container
	if v := ret.Get(0); v != nil {
		containers = v.([]types.Container) //nolint:forcetypeassert
	}

	return containers, ret.Error(1)
}

func (_m *MockDockerAPI) ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error) {
	ret := _m.Called(ctx, containerID)

	return ret.Get(0).(types.ContainerJSON), ret.Error(1) //nolint:forcetypeassert
}

func (_m *MockDockerAPI) Info(ctx context.Context) (system.Info, error) {
	ret := _m.Called(ctx)

	return ret.Get(0).(system.Info), ret.Error(1) //nolint:forcetypeassert
}

func (_m *MockDockerAPI) Close() error {
	return _m.Called().Error(0)
}

// NewMockDockerAPI creates a new instance of MockDockerAPI. It also registers a testing interface on the mock
// and a cleanup function to assert the mocks expectations.
func NewMockDockerAPI(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockDockerAPI {
	m := &MockDockerAPI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
