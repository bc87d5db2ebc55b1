package table

import "strings"

// missingTokens are cell spellings treated as absent, matching the NA
// markers common spreadsheet and dataframe exports write.
var missingTokens = map[string]struct{}{
	"":          {},
	"#N/A":      {},
	"#N/A N/A":  {},
	"#NA":       {},
	"-1.#IND":   {},
	"-1.#QNAN":  {},
	"-NaN":      {},
	"-nan":      {},
	"1.#IND":    {},
	"1.#QNAN":   {},
	"<NA>":      {},
	"N/A":       {},
	"NA":        {},
	"NULL":      {},
	"NaN":       {},
	"None":      {},
	"n/a":       {},
	"nan":       {},
	"null":      {},
}

// IsMissing reports whether a cell value counts as absent.
func IsMissing(v string) bool {
	_, ok := missingTokens[strings.TrimSpace(v)]
	return ok
}

// Row is one data row of a Table.
type Row struct {
	cells []string
	Index int
}

// Raw returns the trimmed cell text, or "" when the column is unresolved or
// the row is short.
func (r Row) Raw(c Column) string {
	if c.Index < 0 || c.Index >= len(r.cells) {
		return ""
	}

	return strings.TrimSpace(r.cells[c.Index])
}

// Value returns the trimmed cell text and whether it holds a value.
func (r Row) Value(c Column) (string, bool) {
	v := r.Raw(c)
	if IsMissing(v) {
		return "", false
	}

	return v, true
}
