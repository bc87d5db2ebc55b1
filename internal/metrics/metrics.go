// Package metrics records batch import results as Prometheus gauges and
// writes them in the node_exporter textfile format.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"plimport/internal/models"
)

const namespace = "plimport"

// RunStats is the outcome of one import.
type RunStats struct {
	Season           string
	Players          int
	Teams            int
	MissingBirthYear int
	UnknownTeams     int
	Positions        map[models.Position]int
	Duration         time.Duration
	Finished         time.Time
}

// Recorder holds the gauges for one process on a private registry.
type Recorder struct {
	registry     *prometheus.Registry
	players      *prometheus.GaugeVec
	teams        *prometheus.GaugeVec
	missingBirth *prometheus.GaugeVec
	unknownTeams *prometheus.GaugeVec
	positions    *prometheus.GaugeVec
	duration     *prometheus.GaugeVec
	lastSuccess  *prometheus.GaugeVec
}

func gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// NewRecorder creates a recorder with all gauges registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry:     prometheus.NewRegistry(),
		players:      gauge("players", "Players written by the last import.", "season"),
		teams:        gauge("teams", "Distinct teams written by the last import.", "season"),
		missingBirth: gauge("birth_year_missing", "Players without a derivable birth year.", "season"),
		unknownTeams: gauge("unknown_team_players", "Players whose team key matched no team.", "season"),
		positions:    gauge("position_players", "Players per canonical position.", "season", "position"),
		duration:     gauge("last_run_duration_seconds", "Wall time of the last import.", "season"),
		lastSuccess:  gauge("last_success_timestamp_seconds", "Unix time the last import finished.", "season"),
	}

	r.registry.MustRegister(
		r.players,
		r.teams,
		r.missingBirth,
		r.unknownTeams,
		r.positions,
		r.duration,
		r.lastSuccess,
	)

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Record sets every gauge from s. Positions absent from s are set to zero.
func (r *Recorder) Record(s RunStats) {
	season := s.Season

	r.players.WithLabelValues(season).Set(float64(s.Players))
	r.teams.WithLabelValues(season).Set(float64(s.Teams))
	r.missingBirth.WithLabelValues(season).Set(float64(s.MissingBirthYear))
	r.unknownTeams.WithLabelValues(season).Set(float64(s.UnknownTeams))
	r.duration.WithLabelValues(season).Set(s.Duration.Seconds())

	for _, pos := range models.Positions {
		r.positions.WithLabelValues(season, string(pos)).Set(float64(s.Positions[pos]))
	}

	finished := s.Finished
	if finished.IsZero() {
		finished = time.Now()
	}

	r.lastSuccess.WithLabelValues(season).Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return prometheus.WriteToTextfile(path, r.registry)
}
