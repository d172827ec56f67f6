package lore

import (
	"errors"
	"fmt"

	"github.com/raysh454/georisk/internal/validation"
)

// ErrInvalidRecord is wrapped by every record validation failure.
var ErrInvalidRecord = errors.New("invalid lore record")

// Validate checks the record's structural invariants.
func (r *Record) Validate() error {
	violations, err := validation.Check(r)
	if err != nil {
		return fmt.Errorf("validating record: %w", err)
	}
	if len(violations) == 0 {
		return nil
	}
	v := violations[0]
	return fmt.Errorf("%w: %s=%v must be %s", ErrInvalidRecord, v.Field, v.Value, v.Range)
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	violations, err := validation.Check(w)
	if err != nil {
		return fmt.Errorf("validating weights: %w", err)
	}
	if len(violations) == 0 {
		return nil
	}
	v := violations[0]
	return fmt.Errorf("%w: weights.%s=%v must be %s", ErrInvalidRecord, v.Field, v.Value, v.Range)
}
