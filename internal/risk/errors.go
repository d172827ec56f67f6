package risk

import (
	"errors"
	"fmt"

	"github.com/raysh454/georisk/internal/validation"
)

// ErrInvalidInput is wrapped by every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError identifies an out-of-range input field.
type InvalidInputError struct {
	Field string
	Value any
	Range string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v must be %s", e.Field, e.Value, e.Range)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// Validate rejects out-of-range inputs instead of clamping them. The first
// offending field is reported.
func (in Inputs) Validate() error {
	violations, err := validation.Check(in)
	if err != nil {
		return fmt.Errorf("validating inputs: %w", err)
	}
	if len(violations) == 0 {
		return nil
	}
	v := violations[0]
	return &InvalidInputError{Field: v.Field, Value: v.Value, Range: v.Range}
}
