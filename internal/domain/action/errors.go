package action

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrInvalidField   = errors.New("invalid field value")
	ErrBrokenChain    = errors.New("game state chain is inconsistent")
)

// UnknownVariantError is returned when a tuple carries a discriminant this
// build does not know. The rest of the tuple cannot be interpreted.
type UnknownVariantError struct {
	Op           string
	Discriminant any
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("%s: %s %v", e.Op, ErrUnknownVariant.Error(), e.Discriminant)
}

func (e *UnknownVariantError) Unwrap() error {
	return ErrUnknownVariant
}

type InvalidFieldError struct {
	Field string
	Value int
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %s=%d", ErrInvalidField.Error(), e.Field, e.Value)
}

func (e *InvalidFieldError) Unwrap() error {
	return ErrInvalidField
}
