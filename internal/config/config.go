// Package config provides configuration management for the importer.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrMissingSeasonFolder = errors.New("import.season_folder is required")
	ErrInvalidCurrency     = errors.New("import.currency must be a three letter upper-case code")
	ErrMissingLanguage     = errors.New("import.language is required")
	ErrInvalidDelimiter    = errors.New("import.delimiter must be a single character")
	ErrMissingColumns      = errors.New("columns: required field has no candidates")
	ErrNoTeamKeyColumns    = errors.New("columns.teams needs code or id candidates")
	ErrMissingOutputPath   = errors.New("output.path is required")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'console' or 'json'")
	ErrInvalidDriver       = errors.New("export.driver must be 'sqlite' or 'postgres'")
	ErrMissingDSN          = errors.New("export.dsn is required when export.driver is set")
	ErrMissingDriver       = errors.New("export.driver is required when export.dsn is set")
	ErrInvalidFetch        = errors.New("invalid fetch configuration")
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLIMPORT_"

// Config represents the complete importer configuration.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Columns ColumnsConfig `yaml:"columns"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Export  ExportConfig  `yaml:"export"`
	Metrics MetricsConfig `yaml:"metrics"`
	Fetch   FetchConfig   `yaml:"fetch"`
}

// ImportConfig describes the source export and the fixed meta values.
type ImportConfig struct {
	// SeasonFolder is the directory name under <source>/data.
	SeasonFolder string `yaml:"season_folder" validate:"required"`
	// Season is the label written to meta.season. Empty derives it from
	// SeasonFolder.
	Season     string `yaml:"season"`
	Currency   string `yaml:"currency" validate:"required,len=3,uppercase"`
	Language   string `yaml:"language" validate:"required"`
	SourceRepo string `yaml:"source_repo"`
	Delimiter  string `yaml:"delimiter" validate:"omitempty,delimiter"`
}

// Comma returns the CSV delimiter rune, or 0 for the reader default.
func (ic ImportConfig) Comma() rune {
	if ic.Delimiter == "" {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(ic.Delimiter)

	return r
}

// ColumnsConfig holds the ordered header candidates per logical field.
type ColumnsConfig struct {
	Players PlayerColumns `yaml:"players"`
	Teams   TeamColumns   `yaml:"teams"`
}

// PlayerColumns lists players table candidates.
type PlayerColumns struct {
	ID          []string `yaml:"id" validate:"required,min=1,dive,required"`
	Team        []string `yaml:"team" validate:"required,min=1,dive,required"`
	Position    []string `yaml:"position" validate:"required,min=1,dive,required"`
	WebName     []string `yaml:"web_name"`
	FirstName   []string `yaml:"first_name"`
	LastName    []string `yaml:"last_name"`
	Nationality []string `yaml:"nationality"`
	BirthYear   []string `yaml:"birth_year"`
	BirthDate   []string `yaml:"birth_date"`
}

// TeamColumns lists teams table candidates. Code is preferred over ID for
// the team key.
type TeamColumns struct {
	Code     []string `yaml:"code"`
	ID       []string `yaml:"id"`
	Name     []string `yaml:"name"`
	Short    []string `yaml:"short"`
	Strength []string `yaml:"strength"`
}

// OutputConfig defines where results are written.
type OutputConfig struct {
	Path   string `yaml:"path" validate:"required"`
	Report string `yaml:"report"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// ExportConfig selects the optional SQL export.
type ExportConfig struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether an SQL export was requested.
func (e ExportConfig) Enabled() bool {
	return e.Driver != ""
}

// MetricsConfig defines the Prometheus textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// FetchConfig controls downloading a season's exports from the source repo.
type FetchConfig struct {
	// URL is the primary file URL template. {repo}, {ref}, {season} and
	// {file} are substituted.
	URL      string      `yaml:"url" validate:"required"`
	Mirrors  []string    `yaml:"mirrors" validate:"omitempty,dive,required"`
	Ref      string      `yaml:"ref" validate:"required"`
	MaxBytes int64       `yaml:"max_bytes" validate:"min=1"`
	Retry    RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts" validate:"min=1"`
	InitialDelayMs    int     `yaml:"initial_delay_ms" validate:"min=0"`
	MaxDelayMs        int     `yaml:"max_delay_ms" validate:"min=0"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier" validate:"gte=1"`
	TimeoutSec        int     `yaml:"timeout_sec" validate:"min=1"`
}

// GetRetryDelay calculates the exponential backoff delay before attempt
// number attempt. The first attempt has no delay.
func (rp RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 2; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout.
func (rp RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			SeasonFolder: "2025-2026",
			Currency:     "EUR",
			Language:     "en",
			SourceRepo:   "olbauday/FPL-Core-Insights",
		},
		Columns: ColumnsConfig{
			Players: PlayerColumns{
				ID:          []string{"player_id", "id", "element", "element_id"},
				Team:        []string{"team_code", "team", "team_id"},
				Position:    []string{"position", "element_type", "pos"},
				WebName:     []string{"web_name", "name"},
				FirstName:   []string{"first_name"},
				LastName:    []string{"second_name", "last_name", "surname"},
				Nationality: []string{"nationality"},
				BirthYear:   []string{"birthYear", "birth_year", "year_of_birth", "dob_year"},
				BirthDate:   []string{"birth_date", "birthdate", "date_of_birth", "dob"},
			},
			Teams: TeamColumns{
				Code:     []string{"code", "team_code"},
				ID:       []string{"id", "team_id"},
				Name:     []string{"name"},
				Short:    []string{"short_name", "short"},
				Strength: []string{"strength", "overall_strength"},
			},
		},
		Output: OutputConfig{
			Path: "data/premier_league_2025_26.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Fetch: FetchConfig{
			URL:      "https://raw.githubusercontent.com/{repo}/{ref}/data/{season}/{file}",
			Mirrors:  []string{"https://cdn.jsdelivr.net/gh/{repo}@{ref}/data/{season}/{file}"},
			Ref:      "main",
			MaxBytes: 32 << 20,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default. An
// empty path returns the defaults.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()

	if filepath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are kept. An empty path or a missing file is not an
// error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	return nil
}

// ApplyEnv overrides values from PLIMPORT_* variables using lookup
// (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	targets := map[string]*string{
		"SEASON":       &c.Import.SeasonFolder,
		"SEASON_LABEL": &c.Import.Season,
		"CURRENCY":     &c.Import.Currency,
		"LANGUAGE":     &c.Import.Language,
		"SOURCE_REPO":  &c.Import.SourceRepo,
		"DELIMITER":    &c.Import.Delimiter,
		"OUT":          &c.Output.Path,
		"REPORT":       &c.Output.Report,
		"LOG_LEVEL":    &c.Logging.Level,
		"LOG_FORMAT":   &c.Logging.Format,
		"DB_DRIVER":    &c.Export.Driver,
		"DB_DSN":       &c.Export.DSN,
		"METRICS_FILE": &c.Metrics.Textfile,
		"FETCH_URL":    &c.Fetch.URL,
		"FETCH_REF":    &c.Fetch.Ref,
	}

	for name, dst := range targets {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
}

// fieldErrors maps struct namespaces to the sentinel reported for them.
var fieldErrors = map[string]error{
	"Config.Import.SeasonFolder":      ErrMissingSeasonFolder,
	"Config.Import.Currency":          ErrInvalidCurrency,
	"Config.Import.Language":          ErrMissingLanguage,
	"Config.Import.Delimiter":         ErrInvalidDelimiter,
	"Config.Output.Path":              ErrMissingOutputPath,
	"Config.Logging.Level":            ErrInvalidLogLevel,
	"Config.Logging.Format":           ErrInvalidLogFormat,
	"Config.Export.Driver":            ErrInvalidDriver,
	"Config.Columns.Players.ID":       ErrMissingColumns,
	"Config.Columns.Players.Team":     ErrMissingColumns,
	"Config.Columns.Players.Position": ErrMissingColumns,
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.RuneCountInString(s) == 1 && s != "\n" && s != "\r" && s != "\""
	})

	return v
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		fe := fieldErrs[0]
		ns := fe.StructNamespace()

		if sentinel, ok := fieldErrors[ns]; ok {
			return fmt.Errorf("%w (got %q)", sentinel, fmt.Sprint(fe.Value()))
		}

		if strings.HasPrefix(ns, "Config.Columns.") {
			return fmt.Errorf("%w: %s", ErrMissingColumns, ns)
		}

		if strings.HasPrefix(ns, "Config.Fetch.") {
			return fmt.Errorf("%w: %s fails %s", ErrInvalidFetch, ns, fe.Tag())
		}

		return fmt.Errorf("%w: %s fails %s", ErrInvalidConfig, ns, fe.Tag())
	}

	if len(c.Columns.Teams.Code) == 0 && len(c.Columns.Teams.ID) == 0 {
		return ErrNoTeamKeyColumns
	}

	if c.Export.Driver != "" && c.Export.DSN == "" {
		return ErrMissingDSN
	}

	if c.Export.Driver == "" && c.Export.DSN != "" {
		return ErrMissingDriver
	}

	return nil
}

// SeasonLabel returns the configured season label, or one derived from the
// season folder: "2025-2026" becomes "2025/2026".
func (c *Config) SeasonLabel() string {
	if c.Import.Season != "" {
		return c.Import.Season
	}

	start, end, ok := strings.Cut(c.Import.SeasonFolder, "-")
	if ok && isYear(start) && isYear(end) {
		return start + "/" + end
	}

	return c.Import.SeasonFolder
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Season: %s, Output: %s, Export: %s}",
		c.Import.SeasonFolder,
		c.Output.Path,
		c.Export.Driver,
	)
}
