package attribute

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the root of every validation failure in this package.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFrozen is returned when adding to a registry that was frozen.
	ErrFrozen = errors.New("attribute registry is frozen")
)

// RangeError describes a value rejected because it falls outside its allowed range.
type RangeError struct {
	Op    string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	if !isFinite(e.Value) {
		name := e.Op
		switch e.Op {
		case "min":
			name = "minimum"
		case "max":
			name = "maximum"
		}
		return fmt.Sprintf("%s %g is not a finite number", name, e.Value)
	}
	switch e.Op {
	case "min":
		return fmt.Sprintf("minimum %g is greater than the maximum %g", e.Value, e.Max)
	case "max":
		return fmt.Sprintf("maximum %g is less than the minimum %g", e.Value, e.Min)
	default:
		return fmt.Sprintf("%s %g is outside the range %g - %g", e.Op, e.Value, e.Min, e.Max)
	}
}

func (e *RangeError) Unwrap() error { return ErrInvalidArgument }
