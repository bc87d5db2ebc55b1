package normalizer

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"plimport/internal/models"
)

// ErrInvalidRecord is returned when a generated record breaks an output
// invariant.
var ErrInvalidRecord = errors.New("invalid player record")

// Validator checks output records against the document invariants.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks a single record.
func (v *Validator) Validate(p models.Player) error {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: player %q: %s fails %s=%s (got %v)",
			ErrInvalidRecord, p.Source.PlayerID, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}

	return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
}
