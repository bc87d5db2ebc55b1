package ingest

import (
	"plimport/internal/config"
	"plimport/internal/normalizer"
	"plimport/internal/table"
)

// TeamSchema holds the resolved columns of a teams table. Key is the code
// column when present, else the id column.
type TeamSchema struct {
	Key      table.Column
	Name     table.Column
	Short    table.Column
	Strength table.Column
}

func requiredColumn(t *table.Table, field string, candidates []string) (table.Column, error) {
	col, ok := t.Resolve(candidates...)
	if !ok {
		tried := make([]string, len(candidates))
		copy(tried, candidates)

		return table.NoColumn, &SchemaError{Table: t.Name, Field: field, Tried: tried}
	}

	return col, nil
}

func optionalColumn(t *table.Table, candidates []string) table.Column {
	col, _ := t.Resolve(candidates...)
	return col
}

// ResolvePlayerSchema resolves every players field once. The id, team and
// position fields are required.
func ResolvePlayerSchema(t *table.Table, cols config.PlayerColumns) (normalizer.PlayerSchema, error) {
	var (
		s   normalizer.PlayerSchema
		err error
	)

	if s.ID, err = requiredColumn(t, "player id", cols.ID); err != nil {
		return s, err
	}

	if s.Team, err = requiredColumn(t, "team", cols.Team); err != nil {
		return s, err
	}

	if s.Position, err = requiredColumn(t, "position", cols.Position); err != nil {
		return s, err
	}

	s.WebName = optionalColumn(t, cols.WebName)
	s.FirstName = optionalColumn(t, cols.FirstName)
	s.LastName = optionalColumn(t, cols.LastName)
	s.Nationality = optionalColumn(t, cols.Nationality)
	s.BirthYear = t.ResolveAll(cols.BirthYear...)
	s.BirthDate = t.ResolveAll(cols.BirthDate...)

	return s, nil
}

// ResolveTeamSchema resolves the teams fields. A key column (code or id) is
// required.
func ResolveTeamSchema(t *table.Table, cols config.TeamColumns) (TeamSchema, error) {
	var s TeamSchema

	key, ok := t.Resolve(cols.Code...)
	if !ok {
		key, ok = t.Resolve(cols.ID...)
	}

	if !ok {
		tried := make([]string, 0, len(cols.Code)+len(cols.ID))
		tried = append(tried, cols.Code...)
		tried = append(tried, cols.ID...)

		return s, &SchemaError{Table: t.Name, Field: "team key", Tried: tried}
	}

	s.Key = key
	s.Name = optionalColumn(t, cols.Name)
	s.Short = optionalColumn(t, cols.Short)
	s.Strength = optionalColumn(t, cols.Strength)

	return s, nil
}
