package ingest

import (
	"math"
	"strconv"

	"plimport/internal/models"
	"plimport/internal/table"
)

// BuildTeams reads every teams row into a TeamSet in a single pass.
func BuildTeams(t *table.Table, s TeamSchema) *models.TeamSet {
	set := models.NewTeamSet()

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		key := models.CanonicalKey(row.Raw(s.Key))

		team := models.Team{Name: key}
		if name, ok := row.Value(s.Name); ok {
			team.Name = name
		}

		if short, ok := row.Value(s.Short); ok {
			team.Short = &short
		}

		strength := models.DefaultStrength
		if v, ok := row.Value(s.Strength); ok {
			if n, ok := parseStrength(v); ok {
				strength = n
			}
		}

		set.Put(key, team, strength)
	}

	return set
}

// parseStrength accepts integer or float spellings; fractions are dropped.
func parseStrength(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}
