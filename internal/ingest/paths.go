package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Input file names inside a season folder.
const (
	PlayersFile = "players.csv"
	TeamsFile   = "teams.csv"
)

// Paths locates the two exports of one season.
type Paths struct {
	Players string
	Teams   string
}

// SeasonPaths returns the export paths under <source>/data/<season>.
func SeasonPaths(source, season string) Paths {
	dir := filepath.Join(source, "data", season)

	return Paths{
		Players: filepath.Join(dir, PlayersFile),
		Teams:   filepath.Join(dir, TeamsFile),
	}
}

// Check returns a *MissingInputError for the first path that does not
// exist, players first.
func (p Paths) Check() error {
	for _, path := range []string{p.Players, p.Teams} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &MissingInputError{Path: path}
			}

			return err
		}
	}

	return nil
}
