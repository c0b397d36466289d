package flags

import (
	"errors"
	"fmt"
	"slices"
)

var errUnknownValue = errors.New("unknown value")

type EnumFlag struct {
	selected     string
	possible     []string
	defaultValue string
}

func (e *EnumFlag) Set(value string) error {
	if !slices.Contains(e.possible, value) {
		return fmt.Errorf("%w %q, allowed values are %v", errUnknownValue, value, e.possible)
	}

	e.selected = value

	return nil
}

func (e *EnumFlag) Get() any {
	return e.String()
}

func (e *EnumFlag) String() string {
	if e.selected == "" {
		return e.defaultValue
	}

	return e.selected
}
