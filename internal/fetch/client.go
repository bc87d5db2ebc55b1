package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plimport/internal/config"
	"plimport/internal/ingest"
	"plimport/internal/logger"
	"plimport/internal/output"
)

// Client downloads season exports into a local source tree laid out the
// way the importer expects: <dest>/data/<season>/{players,teams}.csv.
type Client struct {
	scraper *Scraper
	cfg     config.FetchConfig
	log     *logger.Logger
	attempt AttemptLog
}

// NewClient creates a client from the fetch configuration. A nil log
// discards output.
func NewClient(cfg config.FetchConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		scraper: NewScraper(cfg.Retry, cfg.MaxBytes),
		cfg:     cfg,
		log:     log,
	}
}

// Result describes a finished download.
type Result struct {
	Paths    ingest.Paths
	Changed  []string
	Attempts AttemptStats
}

// FetchSeason downloads both exports of src into dest. Nothing is written
// unless both files were downloaded.
func (c *Client) FetchSeason(ctx context.Context, src Source, dest string) (*Result, error) {
	paths := ingest.SeasonPaths(dest, src.Season)

	files := []struct {
		name string
		path string
	}{
		{ingest.PlayersFile, paths.Players},
		{ingest.TeamsFile, paths.Teams},
	}

	bodies := make([][]byte, len(files))

	for i, f := range files {
		body, err := c.fetchFile(ctx, src, f.name)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", f.name, err)
		}

		bodies[i] = body
	}

	res := &Result{Paths: paths}

	for i, f := range files {
		changed, err := output.WriteFile(f.path, bodies[i])
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.path, err)
		}

		if changed {
			res.Changed = append(res.Changed, f.path)
		}
	}

	res.Attempts = c.attempt.Stats()

	c.log.Info("fetch finished", "season", src.Season, "ref", src.Ref, "stats", res.Attempts.String())

	return res, nil
}

// fetchFile tries the primary URL and then each mirror.
func (c *Client) fetchFile(ctx context.Context, src Source, file string) ([]byte, error) {
	urls := src.URLs(c.cfg, file)
	if len(urls) == 0 {
		return nil, ErrNoSourcesAvailable
	}

	var errs []error

	for _, url := range urls {
		start := time.Now()
		body, status, attempts, err := c.scraper.ScrapeWithMetrics(ctx, url)

		result := AttemptResult{
			URL:        url,
			Attempts:   attempts,
			Duration:   time.Since(start),
			StatusCode: status,
			Bytes:      len(body),
			Success:    err == nil,
		}

		if err != nil {
			result.Error = err.Error()
		}

		c.attempt.Record(result)

		if err == nil {
			c.log.Debug("downloaded", "url", url, "bytes", len(body), "attempts", attempts)
			return body, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.log.Warn("download failed", "url", url, "status", status, "error", err)
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("%w: %d urls: %w", ErrAllSourcesExhausted, len(urls), errors.Join(errs...))
}

// Attempts returns every recorded fetch result.
func (c *Client) Attempts() []AttemptResult {
	return c.attempt.Results()
}
