// Package validator checks the structure of markdown run reports.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"plimport/pkg/metadata"
)

// Validation errors.
var (
	ErrMissingSeparator = errors.New("table has no separator row")
	ErrColumnCount      = errors.New("row column count differs from header")
	ErrEmptyHeader      = errors.New("table header has an empty cell")
	ErrIntegrity        = errors.New("integrity check failed")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err     error
	Message string
	Line    int
}

func (e ValidationError) Error() string {
	if e.Line == 0 {
		return e.Message
	}

	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	Tables      int
	TotalRows   int
	ValidRows   int
	InvalidRows int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors  []ValidationError
	Stats   ValidationStats
	IsValid bool
}

func (r *ValidationResult) fail(line int, err error, format string, args ...any) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{
		Line:    line,
		Err:     err,
		Message: fmt.Sprintf("%s: %s", err, fmt.Sprintf(format, args...)),
	})
}

// SplitRow splits "| a | b \| c |" into trimmed cells. Escaped pipes stay
// inside their cell.
func SplitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")

	var (
		cells []string
		cur   strings.Builder
	)

	for i := 0; i < len(row); i++ {
		switch {
		case row[i] == '\\' && i+1 < len(row) && row[i+1] == '|':
			cur.WriteString(`\|`)
			i++
		case row[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(row[i])
		}
	}

	return append(cells, strings.TrimSpace(cur.String()))
}

// IsSeparator reports whether cells form a table separator row such as
// "| --- | :--: | ---: |".
func IsSeparator(cells []string) bool {
	if len(cells) == 0 {
		return false
	}

	for _, c := range cells {
		if !strings.Contains(c, "-") || strings.Trim(c, ":-") != "" {
			return false
		}
	}

	return true
}

// IsTableRow reports whether line looks like a pipe table row.
func IsTableRow(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) > 1 && strings.HasPrefix(t, "|") && strings.HasSuffix(t, "|")
}

// ValidateTables checks every pipe table in markdown: a header row, a
// separator row, and data rows with the header's column count.
func ValidateTables(markdown string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	lines := strings.Split(markdown, "\n")

	for i := 0; i < len(lines); {
		if !IsTableRow(lines[i]) {
			i++
			continue
		}

		start := i
		for i < len(lines) && IsTableRow(lines[i]) {
			i++
		}

		validateTable(result, lines[start:i], start+1)
	}

	return result
}

func validateTable(result *ValidationResult, rows []string, firstLine int) {
	result.Stats.Tables++

	header := SplitRow(rows[0])

	for _, c := range header {
		if c == "" {
			result.fail(firstLine, ErrEmptyHeader, "%q", strings.TrimSpace(rows[0]))
			break
		}
	}

	if len(rows) < 2 || !IsSeparator(SplitRow(rows[1])) {
		result.fail(firstLine, ErrMissingSeparator, "after %q", strings.TrimSpace(rows[0]))
		return
	}

	for j, row := range rows[2:] {
		line := firstLine + 2 + j
		result.Stats.TotalRows++

		if n := len(SplitRow(row)); n != len(header) {
			result.Stats.InvalidRows++
			result.fail(line, ErrColumnCount, "got %d, header has %d", n, len(header))

			continue
		}

		result.Stats.ValidRows++
	}
}

// ValidateReport checks a signed report: the hash in its metadata block and
// the structure of its tables.
func ValidateReport(content string) *ValidationResult {
	meta, body := metadata.Extract(content)

	result := ValidateTables(body)

	if _, err := metadata.Verify(content); err != nil {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Err:     errors.Join(ErrIntegrity, err),
			Message: fmt.Sprintf("%s: %v", ErrIntegrity, err),
		})
	} else if meta != nil && !meta.Validation {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Err:     ErrIntegrity,
			Message: "report was signed as not validated",
		})
	}

	return result
}

// Err joins all validation errors, or returns nil when the result is valid.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}

	return errors.Join(errs...)
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}

	return fmt.Sprintf(
		"%s | Tables: %d | Rows: %d | Valid: %d | Invalid: %d",
		status,
		r.Stats.Tables,
		r.Stats.TotalRows,
		r.Stats.ValidRows,
		r.Stats.InvalidRows,
	)
}
