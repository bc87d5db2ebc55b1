package normalizer

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"plimport/internal/table"
)

var dateDelimiters = []string{"-", "/", "."}

// yearRule reads one column with one parser.
type yearRule struct {
	parse func(string) (int, bool)
	col   table.Column
}

// BirthYearExtractor derives a birth year from whichever birth fields a table
// provides. Rules are tried in order and the first success wins.
type BirthYearExtractor struct {
	rules []yearRule
}

// NewBirthYearExtractor builds the rule list: every year column (parsed as
// a number) before every date column (parsed for a leading year).
func NewBirthYearExtractor(yearCols, dateCols []table.Column) *BirthYearExtractor {
	e := &BirthYearExtractor{}

	for _, c := range yearCols {
		e.rules = append(e.rules, yearRule{col: c, parse: ParseYear})
	}

	for _, c := range dateCols {
		e.rules = append(e.rules, yearRule{col: c, parse: ParseDateYear})
	}

	return e
}

// Extract returns the birth year for row, or false when no rule matched.
func (e *BirthYearExtractor) Extract(row table.Row) (int, bool) {
	for _, r := range e.rules {
		v, ok := row.Value(r.col)
		if !ok {
			continue
		}

		if year, ok := r.parse(v); ok {
			return year, true
		}
	}

	return 0, false
}

// ParseYear parses a year-valued cell. Numeric exports sometimes carry a
// float spelling ("1998.0"); the fraction is dropped.
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}

// ParseDateYear takes the first segment of a delimited date as the year, so
// "2001-05-03" gives 2001 and "03/05/2001" gives 3. Delimiters are tried in
// the order - / . and a segment that does not parse falls through to the
// next one. A bare four digit value is taken as the year itself.
func ParseDateYear(s string) (int, bool) {
	for _, sep := range dateDelimiters {
		if !strings.Contains(s, sep) || utf8.RuneCountInString(s) < 4 {
			continue
		}

		first, _, _ := strings.Cut(s, sep)
		if n, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
			return n, true
		}
	}

	if len(s) == 4 && isDigits(s) {
		n, _ := strconv.Atoi(s)
		return n, true
	}

	return 0, false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
