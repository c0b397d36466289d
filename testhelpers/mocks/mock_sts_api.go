package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/mock"
)

// MockSTSAPI is a mock implementation of identity.STSAPI.
type MockSTSAPI struct {
	mock.Mock
}

func (_m *MockSTSAPI) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) { //nolint:lll
	ret := _m.Called(ctx, params)

	return returnOrNil[sts.GetCallerIdentityOutput](ret)
}

// NewMockSTSAPI creates a new instance of MockSTSAPI. It also registers a testing interface on the mock and a
// cleanup function to assert the mocks expectations.
func NewMockSTSAPI(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockSTSAPI {
	m := &MockSTSAPI{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
