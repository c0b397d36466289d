package mocks

import (
	"github.com/stretchr/testify/mock"
)

// returnOrNil unpacks the (*T, error) pair the AWS clients return.
func returnOrNil[T any](ret mock.Arguments) (*T, error) {
	var out *T
	if v := ret.Get(0); v != nil {
		out = v.(*T) //nolint:forcetypeassert
	}

	return out, ret.Error(1)
}
