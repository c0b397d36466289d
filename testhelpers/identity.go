package testhelpers

import (
	"context"
)

// StaticIdentity verifies as Principal or fails with Err.
type StaticIdentity struct {
	Principal string
	Err       error
}

func (i StaticIdentity) Verify(_ context.Context) (string, error) {
	if i.Err != nil {
		return "", i.Err
	}

	return i.Principal, nil
}
