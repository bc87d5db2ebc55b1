// Package formatter renders the markdown run report and aligns markdown
// tables for display.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"plimport/internal/validator"
)

type alignment int

const (
	alignLeft alignment = iota
	alignRight
	alignCenter
)

// AlignTables pads every pipe table in content so that columns line up by
// display width. Wide (CJK) characters count as two columns. Alignment
// markers in the separator row are kept.
func AlignTables(content string) string {
	lines := strings.Split(content, "\n")

	var (
		out   []string
		table []string
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") && len(trimmed) > 1 {
			table = append(table, trimmed)
			continue
		}

		if len(table) > 0 {
			out = append(out, alignTable(table)...)
			table = nil
		}

		out = append(out, line)
	}

	if len(table) > 0 {
		out = append(out, alignTable(table)...)
	}

	return strings.Join(out, "\n")
}

// parseSeparator reports whether cells form a separator row and returns the
// alignment of each column.
func parseSeparator(cells []string) ([]alignment, bool) {
	aligns := make([]alignment, len(cells))

	for i, c := range cells {
		if c == "" || strings.Trim(c, ":-") != "" || !strings.Contains(c, "-") {
			return nil, false
		}

		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")

		switch {
		case left && right:
			aligns[i] = alignCenter
		case right:
			aligns[i] = alignRight
		default:
			aligns[i] = alignLeft
		}
	}

	return aligns, true
}

func alignTable(rows []string) []string {
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, len(rows))
	colCount := 0

	for i, row := range rows {
		cells[i] = validator.SplitRow(row)
		if len(cells[i]) > colCount {
			colCount = len(cells[i])
		}
	}

	aligns, ok := parseSeparator(cells[1])
	if !ok {
		return rows
	}

	for len(aligns) < colCount {
		aligns = append(aligns, alignLeft)
	}

	widths := make([]int, colCount)

	for i, row := range cells {
		if i == 1 {
			continue
		}

		for j, c := range row {
			if w := runewidth.StringWidth(c); w > widths[j] {
				widths[j] = w
			}
		}
	}

	for j := range widths {
		if widths[j] < 3 {
			widths[j] = 3
		}
	}

	out := make([]string, 0, len(rows))

	for i, row := range cells {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == 1 {
				sb.WriteString(separatorCell(widths[j], aligns[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(pad(content, widths[j], aligns[j]))
			}

			sb.WriteString(" |")
		}

		out = append(out, sb.String())
	}

	return out
}

func separatorCell(width int, a alignment) string {
	switch a {
	case alignRight:
		return strings.Repeat("-", width-1) + ":"
	case alignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}

func pad(content string, width int, a alignment) string {
	gap := width - runewidth.StringWidth(content)
	if gap <= 0 {
		return content
	}

	switch a {
	case alignRight:
		return strings.Repeat(" ", gap) + content
	case alignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + content + strings.Repeat(" ", gap-left)
	default:
		return content + strings.Repeat(" ", gap)
	}
}
