package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidState         = errors.New("invalid state")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnknownDiscriminator = errors.New("unknown order discriminator")
	ErrUnknownEvent         = errors.New("unknown event kind")
)

// VolumeError is returned when a removal would drive the standing volume
// below zero. Standing is the leveraged volume when Leveraged is set.
type VolumeError struct {
	Decrease  decimal.Decimal
	Standing  decimal.Decimal
	Leveraged bool
}

func (e *VolumeError) Error() string {
	standing := "standing volume"
	if e.Leveraged {
		standing = "leveraged standing volume"
	}
	return fmt.Sprintf("%s: volume to be removed (%s) is greater than %s (%s)",
		ErrInvalidState, e.Decrease, standing, e.Standing)
}

func (e *VolumeError) Unwrap() error { return ErrInvalidState }

// ArgumentError is returned when a setter or constructor is handed a value
// outside the field's domain.
type ArgumentError struct {
	Field  string
	Reason string
	Value  decimal.Decimal
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %s (%s)", ErrInvalidArgument, e.Reason, e.Field, e.Value)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func checkNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return &ArgumentError{Field: field, Reason: "negative", Value: v}
	}
	return nil
}

func checkPositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return &ArgumentError{Field: field, Reason: "non-positive", Value: v}
	}
	return nil
}
