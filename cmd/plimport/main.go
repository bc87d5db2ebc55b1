// Package main provides the plimport command: it converts a season's player
// and team exports into one normalized squad document.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plimport/internal/config"
	"plimport/internal/validator"
	"plimport/pkg/metadata"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:           "plimport",
		Short:         "Convert a season's players and teams exports into one squad JSON document",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, &opts)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg, opts, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.source, "source", "", "Path to the cloned export repository (required)")
	f.StringVar(&opts.season, "season", "2025-2026", "Season folder under <source>/data/")
	f.StringVar(&opts.out, "out", "data/premier_league_2025_26.json", "Output JSON path")
	f.StringVar(&opts.commit, "commit", "", "Pinned commit hash or tag of the source repository")
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.envFile, "env-file", ".env", "Env file loaded before reading PLIMPORT_* variables")
	f.StringVar(&opts.report, "report", "", "Write a signed markdown run report to this path")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.StringVar(&opts.dbDriver, "db-driver", "", "Export to SQL: sqlite or postgres")
	f.StringVar(&opts.dbDSN, "db-dsn", "", "Data source name for --db-driver")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "console", "Log format: console or json")

	_ = cmd.MarkFlagRequired("source")

	cmd.AddCommand(newFetchCmd(stdout, stderr), newVerifyReportCmd(stdout), newInitConfigCmd(stdout))

	return cmd
}

func newVerifyReportCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-report FILE",
		Short: "Check the hash and tables of a signed run report",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			result := validator.ValidateReport(string(content))
			if err := result.Err(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			meta, _ := metadata.Extract(string(content))

			fmt.Fprintf(stdout, "%s: hash ok (validation=%t, version=%s, last modified %s)\n",
				args[0], meta.Validation, meta.Version, meta.LastModify.Format(time.RFC3339))
			fmt.Fprintf(stdout, "%s: %s\n", args[0], result)

			return nil
		},
	}
}

func newFetchCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		opts runOptions
		dest string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a season's players and teams exports from the source repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, &opts)
			if err != nil {
				return err
			}

			return runFetch(cmd.Context(), cfg, dest, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&dest, "dest", "", "Directory to download into; files land in <dest>/data/<season>/ (required)")
	f.StringVar(&opts.season, "season", "2025-2026", "Season folder to download")
	f.StringVar(&opts.repo, "repo", "", "Source repository as owner/name")
	f.StringVar(&opts.ref, "ref", "main", "Commit, tag or branch to download")
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.envFile, "env-file", ".env", "Env file loaded before reading PLIMPORT_* variables")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "console", "Log format: console or json")

	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func newInitConfigCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config FILE",
		Short: "Write the default configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := config.Default().SaveConfig(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(stdout, "wrote %s\n", args[0])

			return nil
		},
	}
}
