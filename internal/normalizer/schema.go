package normalizer

import "plimport/internal/table"

// PlayerSchema holds the resolved columns of a players table. Optional
// columns that were not found are table.NoColumn.
type PlayerSchema struct {
	ID          table.Column
	Team        table.Column
	Position    table.Column
	WebName     table.Column
	FirstName   table.Column
	LastName    table.Column
	Nationality table.Column
	BirthYear   []table.Column
	BirthDate   []table.Column
}

// StrengthLookup returns a team's strength tier for a canonical team key.
type StrengthLookup interface {
	Strength(key string) int
}
