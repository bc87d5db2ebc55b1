package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"plimport/internal/config"
	"plimport/internal/fetch"
	"plimport/internal/formatter"
	"plimport/internal/ingest"
	"plimport/internal/logger"
	"plimport/internal/metrics"
	"plimport/internal/models"
	"plimport/internal/output"
	"plimport/internal/store"
)

var errMissingRepo = errors.New("import.source_repo is required to fetch")

type runOptions struct {
	source      string
	season      string
	out         string
	commit      string
	configPath  string
	envFile     string
	report      string
	metricsFile string
	dbDriver    string
	dbDSN       string
	logLevel    string
	logFormat   string
	repo        string
	ref         string
}

// resolveConfig layers the configuration: defaults, config file, .env and
// PLIMPORT_* variables, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *runOptions) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.LookupEnv)

	flags := map[string]struct {
		dst *string
		val string
	}{
		"season":       {&cfg.Import.SeasonFolder, opts.season},
		"out":          {&cfg.Output.Path, opts.out},
		"report":       {&cfg.Output.Report, opts.report},
		"metrics-file": {&cfg.Metrics.Textfile, opts.metricsFile},
		"db-driver":    {&cfg.Export.Driver, opts.dbDriver},
		"db-dsn":       {&cfg.Export.DSN, opts.dbDSN},
		"log-level":    {&cfg.Logging.Level, opts.logLevel},
		"log-format":   {&cfg.Logging.Format, opts.logFormat},
		"repo":         {&cfg.Import.SourceRepo, opts.repo},
		"ref":          {&cfg.Fetch.Ref, opts.ref},
	}

	for name, f := range flags {
		if cmd.Flags().Changed(name) {
			*f.dst = f.val
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func newRunLogger(cfg *config.Config, stderr io.Writer) *logger.Logger {
	return logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: stderr,
	}).With("run_id", uuid.NewString())
}

// run performs one import. Every output is produced only after the document
// has been fully assembled, so a failed import leaves no files behind.
func run(ctx context.Context, cfg *config.Config, opts runOptions, stdout, stderr io.Writer) error {
	log := newRunLogger(cfg, stderr)

	log.Debug("configuration", "config", cfg.String())

	importer := ingest.NewImporter(cfg, log)

	res, err := importer.Run(ctx, ingest.Options{
		SourceDir: opts.source,
		Commit:    opts.commit,
	})
	if err != nil {
		log.Error("import failed", "error", err)
		return err
	}

	doc := res.Document

	changed, err := output.Write(cfg.Output.Path, doc)
	if err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output.Path, err)
	}

	log.Info("document written",
		"path", cfg.Output.Path,
		"changed", changed,
		"players", res.Stats.Players,
		"teams", res.Stats.Teams,
		"duration", res.Duration.String(),
	)

	if cfg.Output.Report != "" {
		if err := formatter.WriteReport(cfg.Output.Report, formatter.Report{
			Document:    doc,
			Version:     version,
			GeneratedAt: time.Now(),
		}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		log.Info("report written", "path", cfg.Output.Report)
	}

	if cfg.Metrics.Textfile != "" {
		rec := metrics.NewRecorder()
		rec.Record(metrics.RunStats{
			Season:           cfg.Import.SeasonFolder,
			Players:          res.Stats.Players,
			Teams:            res.Stats.Teams,
			MissingBirthYear: res.Stats.MissingBirthYear,
			UnknownTeams:     res.Stats.UnknownTeams,
			Positions:        res.Stats.Positions,
			Duration:         res.Duration,
		})

		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}

		log.Info("metrics written", "path", cfg.Metrics.Textfile)
	}

	if cfg.Export.Enabled() {
		if err := export(ctx, cfg.Export, doc, log); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "Wrote %s with %d players. birthYear missing: %d\n",
		cfg.Output.Path, res.Stats.Players, res.Stats.MissingBirthYear)

	return nil
}

func export(ctx context.Context, ec config.ExportConfig, doc *models.Document, log *logger.Logger) error {
	db, err := store.Open(ctx, store.Driver(ec.Driver), ec.DSN)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer db.Close()

	saved, err := db.SaveDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	log.Info("exported to database", "driver", ec.Driver, "teams", saved.Teams, "players", saved.Players)

	return nil
}

// runFetch downloads the configured season into dest.
func runFetch(ctx context.Context, cfg *config.Config, dest string, stdout, stderr io.Writer) error {
	if cfg.Import.SourceRepo == "" {
		return errMissingRepo
	}

	log := newRunLogger(cfg, stderr)

	res, err := fetch.NewClient(cfg.Fetch, log).FetchSeason(ctx, fetch.Source{
		Repo:   cfg.Import.SourceRepo,
		Ref:    cfg.Fetch.Ref,
		Season: cfg.Import.SeasonFolder,
	}, dest)
	if err != nil {
		log.Error("fetch failed", "error", err)
		return err
	}

	fmt.Fprintf(stdout, "Fetched %s and %s at %s (%d changed)\n",
		res.Paths.Players, res.Paths.Teams, cfg.Fetch.Ref, len(res.Changed))

	return nil
}
