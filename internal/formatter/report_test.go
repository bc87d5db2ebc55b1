package formatter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plimport/internal/models"
	"plimport/internal/validator"
	"plimport/pkg/metadata"
)

func reportDocument() *models.Document {
	teams := models.NewTeamSet()
	ars, mci := "ARS", "MCI"
	teams.Put("3", models.Team{Name: "Arsenal", Short: &ars}, 4)
	teams.Put("14", models.Team{Name: "Man City", Short: &mci}, 5)
	teams.Put("20", models.Team{Name: "Wolves"}, 2)

	y1995, y2000 := 1995, 2000
	commit := "abc123"

	return &models.Document{
		Meta: models.Meta{
			Season:             "2025/2026",
			SourceRepo:         "olbauday/FPL-Core-Insights",
			SourceSeasonFolder: "2025-2026",
			PinnedCommit:       &commit,
			Notes:              []string{"birthYear missing for 2 players (set null); enrich later if needed."},
		},
		Teams: teams,
		Players: []models.Player{
			{Name: "P1", BirthYear: &y1995, Position: models.Goalkeeper, Rating: 224, Development: 100, Source: models.PlayerSource{PlayerID: "1", TeamKey: "3"}},
			{Name: "P2", Position: models.Forward, Rating: 230, Development: 150, Source: models.PlayerSource{PlayerID: "2", TeamKey: "3"}},
			{Name: "P3", BirthYear: &y2000, Position: models.Midfielder, Rating: 221, Development: 90, Source: models.PlayerSource{PlayerID: "3", TeamKey: "14"}},
			{Name: "P4", Position: models.Defender, Rating: 200, Development: 120, Source: models.PlayerSource{PlayerID: "4", TeamKey: "99"}},
		},
	}
}

func TestRenderReport(t *testing.T) {
	got := RenderReport(Report{
		Document:    reportDocument(),
		Version:     "dev",
		GeneratedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	})

	for _, want := range []string{
		"# Squad import 2025/2026\n",
		"- Source: olbauday/FPL-Core-Insights (2025-2026)\n",
		"- Pinned commit: abc123\n",
		"- Players: 4\n",
		"- Teams: 3\n",
		"- Birth year missing: 2\n",
		"| Key | Name     | Short | Strength | Players | Avg rating |\n",
		"| --- | -------- | ----- | -------: | ------: | ---------: |\n",
		"| 3   | Arsenal  | ARS   |        4 |       2 |      227.0 |\n",
		"| 20  | Wolves   | -     |        2 |       0 |          - |\n",
		"| GK       |       1 |      224.0 |           100.0 |\n",
		"## Unknown team keys\n",
		"| 99  |       1 |\n",
		"- birthYear missing for 2 players (set null); enrich later if needed.\n",
		"VERSION: dev\n",
		"LAST_MODIFY: 2025-08-01T00:00:00Z\n",
	} {
		assert.Contains(t, got, want)
	}

	meta, err := metadata.Verify(got)
	require.NoError(t, err)
	assert.True(t, meta.Validation)

	result := validator.ValidateReport(got)
	require.NoError(t, result.Err())
	assert.Equal(t, 3, result.Stats.Tables)
}

func TestRenderReport_HashIgnoresTime(t *testing.T) {
	a := RenderReport(Report{Document: reportDocument(), GeneratedAt: time.Unix(0, 0)})
	b := RenderReport(Report{Document: reportDocument(), GeneratedAt: time.Unix(86400, 0)})

	assert.NotEqual(t, a, b)
	assert.Equal(t, metadata.CalculateHash(a), metadata.CalculateHash(b))
}

func TestRenderReport_NoUnknownTeams(t *testing.T) {
	doc := reportDocument()
	doc.Players = doc.Players[:3]
	doc.Meta.PinnedCommit = nil

	got := RenderReport(Report{Document: doc})
	assert.NotContains(t, got, "Unknown team keys")
	assert.Contains(t, got, "- Pinned commit: none\n")
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.md")

	require.NoError(t, WriteReport(path, Report{Document: reportDocument()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = metadata.Verify(string(data))
	assert.NoError(t, err)
}
