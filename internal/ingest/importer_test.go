package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plimport/internal/config"
	"plimport/internal/models"
	"plimport/internal/synth"
)

const season = "2025-2026"

// writeSeason creates <root>/data/<season>/{players,teams}.csv. An empty
// body skips that file.
func writeSeason(t *testing.T, players, teams string) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "data", season)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	if players != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PlayersFile), []byte(players), 0o644))
	}

	if teams != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, TeamsFile), []byte(teams), 0o644))
	}

	return root
}

func run(t *testing.T, root string) (*Result, error) {
	t.Helper()

	return NewImporter(config.Default(), nil).Run(context.Background(), Options{SourceDir: root})
}

func TestRun_SinglePlayer(t *testing.T) {
	root := writeSeason(t,
		"id,team,position,web_name\n7,1,3,A. Test\n",
		"code,strength\n1,4\n",
	)

	res, err := run(t, root)
	require.NoError(t, err)

	doc := res.Document
	require.Len(t, doc.Players, 1)

	p := doc.Players[0]
	assert.Equal(t, "A. Test", p.Name)
	assert.Equal(t, models.Midfielder, p.Position)
	assert.Equal(t, 210+synth.StableIndex("7:rating", 25), p.Rating)
	assert.Equal(t, 231, p.Rating)
	assert.Equal(t, "7", p.Source.PlayerID)
	assert.Equal(t, "1", p.Source.TeamKey)
	assert.Nil(t, p.BirthYear)

	team, ok := doc.Teams.Get("1")
	require.True(t, ok)
	assert.Equal(t, "1", team.Name)
	assert.Nil(t, team.Short)

	assert.Equal(t, "2025/2026", doc.Meta.Season)
	assert.Equal(t, "EUR", doc.Meta.Currency)
	assert.Equal(t, "en", doc.Meta.Language)
	assert.Equal(t, season, doc.Meta.SourceSeasonFolder)
	assert.Nil(t, doc.Meta.PinnedCommit)
	assert.Equal(t, []string{"birthYear missing for 1 players (set null); enrich later if needed."}, doc.Meta.Notes)

	assert.Equal(t, Stats{
		Players:          1,
		Teams:            1,
		MissingBirthYear: 1,
		Positions:        map[models.Position]int{models.Midfielder: 1},
	}, res.Stats)
}

func TestRun_FullRows(t *testing.T) {
	root := writeSeason(t,
		"Player_ID,Team_Code,Element_Type,First_Name,Second_Name,Nationality,Birth_Date\n"+
			"1,3,1,David,Raya,ESP,1995-09-15\n"+
			"42,14,FWD,,Haaland,NOR,NA\n"+
			"9,99,MID,,,,\n",
		"id,code,name,short_name,strength\n"+
			"1,3,Arsenal,ARS,4\n"+
			"13,14,Man City,MCI,5.0\n",
	)

	res, err := run(t, root)
	require.NoError(t, err)

	doc := res.Document
	require.Len(t, doc.Players, 3)

	raya := doc.Players[0]
	assert.Equal(t, "David Raya", raya.Name)
	assert.Equal(t, models.Goalkeeper, raya.Position)
	require.NotNil(t, raya.BirthYear)
	assert.Equal(t, 1995, *raya.BirthYear)
	assert.Equal(t, synth.Rating("1", 4, models.Goalkeeper), raya.Rating)

	haaland := doc.Players[1]
	assert.Equal(t, "Haaland", haaland.Name)
	assert.Equal(t, models.Forward, haaland.Position)
	assert.Nil(t, haaland.BirthYear)
	assert.Equal(t, 231, haaland.Rating)

	unknown := doc.Players[2]
	assert.Equal(t, "Player 9", unknown.Name)
	assert.Nil(t, unknown.Nationality)
	assert.Equal(t, synth.Rating("9", 3, models.Midfielder), unknown.Rating)

	assert.Equal(t, []string{"3", "14"}, doc.Teams.Keys())
	assert.Equal(t, 5, doc.Teams.Strength("14"))

	city, _ := doc.Teams.Get("14")
	require.NotNil(t, city.Short)
	assert.Equal(t, "MCI", *city.Short)

	assert.Equal(t, 2, res.Stats.MissingBirthYear)
	assert.Equal(t, 1, res.Stats.UnknownTeams)
}

func TestRun_TeamIDFallbackAndDuplicates(t *testing.T) {
	root := writeSeason(t,
		"id,team_id,pos\n1,2,DF\n",
		"team_id,name,strength\n2,Old,1\n5,Other,\n2.0,New,bad\n",
	)

	res, err := run(t, root)
	require.NoError(t, err)

	teams := res.Document.Teams
	assert.Equal(t, []string{"2", "5"}, teams.Keys())

	team, _ := teams.Get("2")
	assert.Equal(t, "New", team.Name)
	assert.Equal(t, models.DefaultStrength, teams.Strength("2"))
	assert.Equal(t, models.DefaultStrength, teams.Strength("5"))
}

func TestRun_Commit(t *testing.T) {
	root := writeSeason(t, "id,team,position\n1,1,1\n", "code\n1\n")

	res, err := NewImporter(config.Default(), nil).Run(context.Background(), Options{SourceDir: root, Commit: "abc123"})
	require.NoError(t, err)
	require.NotNil(t, res.Document.Meta.PinnedCommit)
	assert.Equal(t, "abc123", *res.Document.Meta.PinnedCommit)
}

func TestRun_MissingInput(t *testing.T) {
	tests := []struct {
		name    string
		players string
		teams   string
		want    string
	}{
		{"players", "", "code\n1\n", PlayersFile},
		{"teams", "id,team,position\n1,1,1\n", "", TeamsFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeSeason(t, tt.players, tt.teams)

			_, err := run(t, root)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingInput)

			var missing *MissingInputError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, filepath.Join(root, "data", season, tt.want), missing.Path)
			assert.Contains(t, err.Error(), "Check season folder name.")
		})
	}
}

func TestRun_SchemaError(t *testing.T) {
	tests := []struct {
		name    string
		players string
		teams   string
		table   string
		field   string
	}{
		{"no id", "name,team,position\nx,1,1\n", "code\n1\n", "players", "player id"},
		{"no team", "id,club,position\n1,1,1\n", "code\n1\n", "players", "team"},
		{"no position", "id,team,role\n1,1,1\n", "code\n1\n", "players", "position"},
		{"no team key", "id,team,position\n1,1,1\n", "name\nArsenal\n", "teams", "team key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, writeSeason(t, tt.players, tt.teams))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchema)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tt.table, schemaErr.Table)
			assert.Equal(t, tt.field, schemaErr.Field)
			assert.NotEmpty(t, schemaErr.Tried)
		})
	}
}

func TestSchemaError_Message(t *testing.T) {
	err := &SchemaError{Table: "players", Field: "position", Tried: []string{"position", "element_type", "pos"}}
	assert.Equal(t, "no position column found in players (tried position/element_type/pos)", err.Error())
}

func TestRun_Deterministic(t *testing.T) {
	root := writeSeason(t,
		"id,team,position,web_name,dob\n1,1,GK,A,2000\n2,1,DF,B,\n3,2,4,C,03/05/2001\n",
		"code,name,strength\n1,One,2\n2,Two,5\n",
	)

	first, err := run(t, root)
	require.NoError(t, err)

	second, err := run(t, root)
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document)
	require.NotNil(t, first.Document.Players[2].BirthYear)
	assert.Equal(t, 3, *first.Document.Players[2].BirthYear)
}

func TestRun_Cancelled(t *testing.T) {
	root := writeSeason(t, "id,team,position\n1,1,1\n", "code\n1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImporter(config.Default(), nil).Run(ctx, Options{SourceDir: root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Delimiter(t *testing.T) {
	root := writeSeason(t, "id;team;position\n1;1;1\n", "code;strength\n1;5\n")

	cfg := config.Default()
	cfg.Import.Delimiter = ";"

	res, err := NewImporter(cfg, nil).Run(context.Background(), Options{SourceDir: root})
	require.NoError(t, err)
	assert.Equal(t, synth.Rating("1", 5, models.Goalkeeper), res.Document.Players[0].Rating)
}
