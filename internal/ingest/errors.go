package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for fatal input problems.
var (
	ErrMissingInput = errors.New("missing input")
	ErrSchema       = errors.New("schema mismatch")
)

// MissingInputError reports an expected input file that does not exist.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing %s. Check season folder name.", e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

// SchemaError reports a required logical field with no matching column.
type SchemaError struct {
	Table string
	Field string
	Tried []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no %s column found in %s (tried %s)", e.Field, e.Table, strings.Join(e.Tried, "/"))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
