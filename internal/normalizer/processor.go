// Package normalizer turns raw player rows into canonical output records.
package normalizer

import (
	"fmt"

	"plimport/internal/models"
	"plimport/internal/table"
)

// Processor transforms rows and checks the result.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a processor for a resolved players schema.
func NewProcessor(schema PlayerSchema, teams StrengthLookup) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(schema, teams),
	}
}

// Process converts row into a validated record.
func (p *Processor) Process(row table.Row) (models.Player, error) {
	rec := p.transformer.Transform(row)

	if err := p.validator.Validate(rec); err != nil {
		return models.Player{}, fmt.Errorf("row %d: %w", row.Index+1, err)
	}

	return rec, nil
}
