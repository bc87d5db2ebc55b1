package normalizer

import (
	"plimport/internal/models"
	"plimport/internal/synth"
	"plimport/internal/table"
)

// Transformer turns one players row into an output record.
type Transformer struct {
	teams  StrengthLookup
	birth  *BirthYearExtractor
	schema PlayerSchema
	names  NameResolver
}

// NewTransformer creates a transformer for rows matching schema.
func NewTransformer(schema PlayerSchema, teams StrengthLookup) *Transformer {
	return &Transformer{
		schema: schema,
		teams:  teams,
		birth:  NewBirthYearExtractor(schema.BirthYear, schema.BirthDate),
		names: NameResolver{
			Web:   schema.WebName,
			First: schema.FirstName,
			Last:  schema.LastName,
		},
	}
}

// Transform builds the record for row. It never fails: every gap in the
// row has a default.
func (t *Transformer) Transform(row table.Row) models.Player {
	id := row.Raw(t.schema.ID)
	teamKey := models.CanonicalKey(row.Raw(t.schema.Team))
	pos := NormalizePosition(row.Raw(t.schema.Position))

	p := models.Player{
		Name:        t.names.Resolve(row, id),
		Position:    pos,
		Rating:      synth.Rating(id, t.teams.Strength(teamKey), pos),
		Development: synth.Development(id, pos),
		Source: models.PlayerSource{
			PlayerID: id,
			TeamKey:  teamKey,
		},
	}

	if year, ok := t.birth.Extract(row); ok {
		p.BirthYear = &year
	}

	if nat, ok := row.Value(t.schema.Nationality); ok {
		p.Nationality = &nat
	}

	return p
}
