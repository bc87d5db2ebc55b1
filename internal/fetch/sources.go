package fetch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"plimport/internal/config"
)

// Source errors.
var (
	ErrNoSourcesAvailable  = errors.New("no sources available")
	ErrAllSourcesExhausted = errors.New("all sources exhausted")
)

// Source identifies one season of the export repository at a ref.
type Source struct {
	Repo   string
	Ref    string
	Season string
}

// URLs expands the primary template and then each mirror for file.
func (s Source) URLs(fc config.FetchConfig, file string) []string {
	r := strings.NewReplacer(
		"{repo}", s.Repo,
		"{ref}", s.Ref,
		"{season}", s.Season,
		"{file}", file,
	)

	urls := make([]string, 0, 1+len(fc.Mirrors))
	for _, tmpl := range append([]string{fc.URL}, fc.Mirrors...) {
		if tmpl != "" {
			urls = append(urls, r.Replace(tmpl))
		}
	}

	return urls
}

// AttemptResult records the result of fetching one URL.
type AttemptResult struct {
	URL        string
	Error      string
	Attempts   int
	Duration   time.Duration
	StatusCode int
	Bytes      int
	Success    bool
}

// AttemptLog collects fetch results in order.
type AttemptLog struct {
	results []AttemptResult
}

// Record appends one result.
func (l *AttemptLog) Record(r AttemptResult) {
	l.results = append(l.results, r)
}

// Results returns the recorded results.
func (l *AttemptLog) Results() []AttemptResult {
	return l.results
}

// Stats summarizes the log.
func (l *AttemptLog) Stats() AttemptStats {
	var stats AttemptStats

	for _, r := range l.results {
		stats.URLs++
		stats.Requests += r.Attempts

		if r.Success {
			stats.SuccessfulURLs++
			stats.Bytes += int64(r.Bytes)
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	URLs           int
	SuccessfulURLs int
	FailedURLs     int
	Requests       int
	Bytes          int64
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Requests: %d | Bytes: %d",
		s.URLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.Requests,
		s.Bytes,
	)
}
