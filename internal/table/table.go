// Package table loads delimited text exports into memory and resolves their
// columns by name.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyTable is returned when the input has no header row.
var ErrEmptyTable = errors.New("table has no header row")

const bom = "\ufeff"

// Table is a fully materialized delimited file.
type Table struct {
	index  map[string]int
	Name   string
	Header []string
	rows   [][]string
}

// Load reads the delimited file at path. comma selects the delimiter; zero
// means ','.
func Load(name, path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(name, f, comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// Read parses delimited text with a header row from r.
func Read(name string, r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}

	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	header[0] = strings.TrimPrefix(header[0], bom)

	t := &Table{
		Name:   name,
		Header: header,
		index:  make(map[string]int, len(header)),
	}

	// The first of several equally named columns wins.
	for i, h := range header {
		if _, dup := t.index[FoldName(h)]; !dup {
			t.index[FoldName(h)] = i
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.rows)+1, err)
		}

		t.rows = append(t.rows, rec)
	}

	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th data row (0-based).
func (t *Table) Row(i int) Row {
	return Row{Index: i, cells: t.rows[i]}
}
