// Package ingest runs one import: it locates the season exports, resolves
// their schemas, and assembles the normalized document.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"

	"plimport/internal/config"
	"plimport/internal/logger"
	"plimport/internal/models"
	"plimport/internal/normalizer"
	"plimport/internal/table"
)

// Options are the per-run inputs that do not come from configuration.
type Options struct {
	// SourceDir is the root of the cloned export repository.
	SourceDir string
	// Commit is the pinned commit label. Empty writes null.
	Commit string
}

// Stats summarizes a run.
type Stats struct {
	Players          int
	Teams            int
	MissingBirthYear int
	UnknownTeams     int
	Positions        map[models.Position]int
}

// Result is the output of a successful run.
type Result struct {
	Document *models.Document
	Paths    Paths
	Stats    Stats
	Duration time.Duration
}

// Importer converts one season's exports into a Document.
type Importer struct {
	cfg *config.Config
	log *logger.Logger
}

// NewImporter creates an importer. A nil logger discards output.
func NewImporter(cfg *config.Config, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}

	return &Importer{cfg: cfg, log: log}
}

// Run performs the import. Missing files and unresolved required columns
// are returned before any row is processed.
func (im *Importer) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	paths := SeasonPaths(opts.SourceDir, im.cfg.Import.SeasonFolder)
	if err := paths.Check(); err != nil {
		return nil, err
	}

	comma := im.cfg.Import.Comma()

	players, err := table.Load("players", paths.Players, comma)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}

	teams, err := table.Load("teams", paths.Teams, comma)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}

	im.log.Debug("loaded tables", "players_rows", players.Len(), "teams_rows", teams.Len())

	playerSchema, err := ResolvePlayerSchema(players, im.cfg.Columns.Players)
	if err != nil {
		return nil, err
	}

	teamSchema, err := ResolveTeamSchema(teams, im.cfg.Columns.Teams)
	if err != nil {
		return nil, err
	}

	if im.log.DebugEnabled() {
		im.log.Debug("resolved players schema", "schema", spew.Sdump(playerSchema))
		im.log.Debug("resolved teams schema", "schema", spew.Sdump(teamSchema))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	teamSet := BuildTeams(teams, teamSchema)
	proc := normalizer.NewProcessor(playerSchema, teamSet)

	stats := Stats{
		Teams:     teamSet.Len(),
		Positions: make(map[models.Position]int, len(models.Positions)),
	}

	out := make([]models.Player, 0, players.Len())

	for i := 0; i < players.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := proc.Process(players.Row(i))
		if err != nil {
			return nil, fmt.Errorf("players %w", err)
		}

		if rec.BirthYear == nil {
			stats.MissingBirthYear++
		}

		if _, ok := teamSet.Get(rec.Source.TeamKey); !ok {
			stats.UnknownTeams++
		}

		stats.Positions[rec.Position]++

		out = append(out, rec)
	}

	stats.Players = len(out)

	if stats.UnknownTeams > 0 {
		im.log.Warn("players reference unknown teams; default strength used", "count", stats.UnknownTeams)
	}

	doc := &models.Document{
		Meta:    im.meta(opts, stats),
		Teams:   teamSet,
		Players: out,
	}

	return &Result{
		Document: doc,
		Paths:    paths,
		Stats:    stats,
		Duration: time.Since(start),
	}, nil
}

func (im *Importer) meta(opts Options, stats Stats) models.Meta {
	m := models.Meta{
		Season:             im.cfg.SeasonLabel(),
		Currency:           im.cfg.Import.Currency,
		Language:           im.cfg.Import.Language,
		SourceRepo:         im.cfg.Import.SourceRepo,
		SourceSeasonFolder: im.cfg.Import.SeasonFolder,
		Notes:              []string{MissingBirthYearNote(stats.MissingBirthYear)},
	}

	if opts.Commit != "" {
		commit := opts.Commit
		m.PinnedCommit = &commit
	}

	return m
}

// MissingBirthYearNote is the meta note reporting unknown birth years.
func MissingBirthYearNote(n int) string {
	return fmt.Sprintf("birthYear missing for %d players (set null); enrich later if needed.", n)
}
