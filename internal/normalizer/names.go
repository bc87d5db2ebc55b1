package normalizer

import (
	"strings"

	"plimport/internal/table"
)

// NameResolver picks a display name: the web name when present, else first
// and last name joined, else a placeholder built from the player id.
type NameResolver struct {
	Web   table.Column
	First table.Column
	Last  table.Column
}

// Resolve returns the display name for row.
func (n NameResolver) Resolve(row table.Row, playerID string) string {
	if web, ok := row.Value(n.Web); ok {
		return web
	}

	first, _ := row.Value(n.First)
	last, _ := row.Value(n.Last)

	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}

	return "Player " + playerID
}
