package table

// Column is a handle on one header position. NoColumn stands for an
// unresolved optional column; reading it always yields a missing value.
type Column struct {
	Name  string
	Index int
}

// NoColumn is returned when no candidate matched.
var NoColumn = Column{Index: -1}

// Found reports whether the column exists in its table.
func (c Column) Found() bool {
	return c.Index >= 0
}

// Resolve returns the first candidate, in the given order, that names a
// column of t. Matching ignores case, width and invisible format runes; the
// returned handle carries the header text as written in the file.
func (t *Table) Resolve(candidates ...string) (Column, bool) {
	for _, c := range candidates {
		if i, ok := t.index[FoldName(c)]; ok {
			return Column{Name: t.Header[i], Index: i}, true
		}
	}

	return NoColumn, false
}

// ResolveAll returns every candidate that names a column of t, in candidate
// order, without duplicates.
func (t *Table) ResolveAll(candidates ...string) []Column {
	var (
		out  []Column
		seen = make(map[int]struct{})
	)

	for _, c := range candidates {
		col, ok := t.Resolve(c)
		if !ok {
			continue
		}

		if _, dup := seen[col.Index]; dup {
			continue
		}

		seen[col.Index] = struct{}{}
		out = append(out, col)
	}

	return out
}
