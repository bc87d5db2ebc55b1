// Package store exports imported documents to a SQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"plimport/internal/models"
)

// Driver names a supported database.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrUnsupportedDriver is returned by Open for an unknown driver.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Store writes documents into the teams and players tables.
type Store struct {
	db     *sql.DB
	driver Driver
}

// SaveResult counts the rows written by SaveDocument.
type SaveResult struct {
	Teams   int
	Players int
}

// Open opens a database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string

	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	if driver == DriverSQLite {
		// A single connection keeps in-memory databases alive across calls.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{db: db, driver: driver}

	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	return s, nil
}

// Close closes the database (safe to call on nil).
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
  season TEXT NOT NULL,
  team_key TEXT NOT NULL,
  name TEXT NOT NULL,
  short_name TEXT,
  strength INTEGER NOT NULL,
  sort_order INTEGER NOT NULL,
  PRIMARY KEY (season, team_key)
)`,
	`CREATE TABLE IF NOT EXISTS players (
  season TEXT NOT NULL,
  player_id TEXT NOT NULL,
  sort_order INTEGER NOT NULL,
  name TEXT NOT NULL,
  birth_year INTEGER,
  nationality TEXT,
  pos TEXT NOT NULL,
  rating INTEGER NOT NULL,
  development INTEGER NOT NULL,
  team_key TEXT NOT NULL,
  PRIMARY KEY (season, player_id)
)`,
}

// withTx runs fn in a transaction and commits when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

const upsertTeam = `INSERT INTO teams (season, team_key, name, short_name, strength, sort_order)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (season, team_key) DO UPDATE SET
  name=EXCLUDED.name, short_name=EXCLUDED.short_name, strength=EXCLUDED.strength, sort_order=EXCLUDED.sort_order`

const upsertPlayer = `INSERT INTO players (season, player_id, sort_order, name, birth_year, nationality, pos, rating, development, team_key)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (season, player_id) DO UPDATE SET
  sort_order=EXCLUDED.sort_order, name=EXCLUDED.name, birth_year=EXCLUDED.birth_year,
  nationality=EXCLUDED.nationality, pos=EXCLUDED.pos, rating=EXCLUDED.rating,
  development=EXCLUDED.development, team_key=EXCLUDED.team_key`

// SaveDocument replaces the season's rows with the contents of doc in one
// transaction. Rows are keyed by the source season folder; a repeated
// player id keeps its last record.
func (s *Store) SaveDocument(ctx context.Context, doc *models.Document) (SaveResult, error) {
	season := doc.Meta.SourceSeasonFolder

	var res SaveResult

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clear players: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clear teams: %w", err)
		}

		for i, key := range doc.Teams.Keys() {
			team, _ := doc.Teams.Get(key)

			if _, err := tx.ExecContext(ctx, upsertTeam,
				season, key, team.Name, team.Short, doc.Teams.Strength(key), i); err != nil {
				return fmt.Errorf("team %q: %w", key, err)
			}

			res.Teams++
		}

		for i, p := range doc.Players {
			if err := ctx.Err(); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, upsertPlayer,
				season, p.Source.PlayerID, i, p.Name, p.BirthYear, p.Nationality,
				string(p.Position), p.Rating, p.Development, p.Source.TeamKey); err != nil {
				return fmt.Errorf("player %q: %w", p.Source.PlayerID, err)
			}

			res.Players++
		}

		return nil
	})
	if err != nil {
		return SaveResult{}, err
	}

	return res, nil
}

// CountPlayers returns the number of stored players for a season folder.
func (s *Store) CountPlayers(ctx context.Context, season string) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE season = $1`, season).Scan(&n)

	return n, err
}

// Player loads one stored player record.
func (s *Store) Player(ctx context.Context, season, playerID string) (models.Player, error) {
	var (
		p     models.Player
		birth sql.NullInt64
		nat   sql.NullString
		pos   string
	)

	err := s.db.QueryRowContext(ctx, `SELECT name, birth_year, nationality, pos, rating, development, team_key
FROM players WHERE season = $1 AND player_id = $2`, season, playerID).
		Scan(&p.Name, &birth, &nat, &pos, &p.Rating, &p.Development, &p.Source.TeamKey)
	if err != nil {
		return models.Player{}, err
	}

	p.Position = models.Position(pos)
	p.Source.PlayerID = playerID

	if birth.Valid {
		year := int(birth.Int64)
		p.BirthYear = &year
	}

	if nat.Valid {
		p.Nationality = &nat.String
	}

	return p, nil
}
