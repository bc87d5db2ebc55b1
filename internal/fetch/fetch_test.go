package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plimport/internal/config"
)

const (
	playersCSV = "player_id,team_code,position\n7,1,MID\n"
	teamsCSV   = "code,name,short_name,strength\n1,Arsenal,ARS,4\n"
)

func fastPolicy() config.RetryPolicy {
	return config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 2,
		TimeoutSec:        5,
	}
}

func fetchConfig(base string, mirrors ...string) config.FetchConfig {
	return config.FetchConfig{
		URL:      base + "/{repo}/{ref}/data/{season}/{file}",
		Mirrors:  mirrors,
		Ref:      "main",
		MaxBytes: 1 << 20,
		Retry:    fastPolicy(),
	}
}

// seasonServer serves the two exports under /owner/repo/<ref>/data/<season>/.
func seasonServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/data/2025-2026/players.csv"):
			_, _ = w.Write([]byte(playersCSV))
		case strings.HasSuffix(r.URL.Path, "/data/2025-2026/teams.csv"):
			_, _ = w.Write([]byte(teamsCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

var season = Source{Repo: "owner/repo", Ref: "abc123", Season: "2025-2026"}

func TestSource_URLs(t *testing.T) {
	fc := config.Default().Fetch

	got := season.URLs(fc, "players.csv")

	assert.Equal(t, []string{
		"https://raw.githubusercontent.com/owner/repo/abc123/data/2025-2026/players.csv",
		"https://cdn.jsdelivr.net/gh/owner/repo@abc123/data/2025-2026/players.csv",
	}, got)
}

func TestScraper_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, status, attempts, err := NewScraper(fastPolicy(), 1024).ScrapeWithMetrics(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, attempts)
}

func TestScraper_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, status, attempts, err := NewScraper(fastPolicy(), 1024).ScrapeWithMetrics(context.Background(), srv.URL)

	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScraper_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewScraper(fastPolicy(), 1024).Scrape(context.Background(), srv.URL)

	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	assert.Contains(t, err.Error(), "attempt 3/3")
	assert.Equal(t, int32(3), calls.Load())
}

func TestScraper_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 11)))
	}))
	defer srv.Close()

	_, err := NewScraper(fastPolicy(), 10).Scrape(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrTooLarge)

	body, err := NewScraper(fastPolicy(), 11).Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, 11)
}

func TestScraper_Cancelled(t *testing.T) {
	srv := seasonServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScraper(fastPolicy(), 1024).Scrape(ctx, srv.URL+"/owner/repo/main/data/2025-2026/players.csv")
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_FetchSeason(t *testing.T) {
	srv := seasonServer(t)
	dest := t.TempDir()

	client := NewClient(fetchConfig(srv.URL), nil)

	res, err := client.FetchSeason(context.Background(), season, dest)
	require.NoError(t, err)

	players, err := os.ReadFile(filepath.Join(dest, "data", "2025-2026", "players.csv"))
	require.NoError(t, err)
	assert.Equal(t, playersCSV, string(players))

	teams, err := os.ReadFile(res.Paths.Teams)
	require.NoError(t, err)
	assert.Equal(t, teamsCSV, string(teams))

	assert.Len(t, res.Changed, 2)
	assert.Equal(t, 2, res.Attempts.SuccessfulURLs)
	assert.Equal(t, int64(len(playersCSV)+len(teamsCSV)), res.Attempts.Bytes)

	// A second download of identical content changes nothing.
	res, err = NewClient(fetchConfig(srv.URL), nil).FetchSeason(context.Background(), season, dest)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)
}

func TestClient_FallsBackToMirror(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer broken.Close()

	mirror := seasonServer(t)

	client := NewClient(fetchConfig(broken.URL, mirror.URL+"/{repo}/{ref}/data/{season}/{file}"), nil)

	res, err := client.FetchSeason(context.Background(), season, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Attempts.URLs)
	assert.Equal(t, 2, res.Attempts.FailedURLs)
	assert.Equal(t, 2, res.Attempts.SuccessfulURLs)

	first := client.Attempts()[0]
	assert.False(t, first.Success)
	assert.Equal(t, http.StatusNotFound, first.StatusCode)
	assert.True(t, strings.HasPrefix(first.URL, broken.URL))
}

func TestClient_AllSourcesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "players.csv") {
			_, _ = w.Write([]byte(playersCSV))
			return
		}

		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := t.TempDir()

	_, err := NewClient(fetchConfig(srv.URL), nil).FetchSeason(context.Background(), season, dest)
	require.ErrorIs(t, err, ErrAllSourcesExhausted)
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	assert.Contains(t, err.Error(), "fetch teams.csv")

	_, statErr := os.Stat(filepath.Join(dest, "data", "2025-2026", "players.csv"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "players.csv must not be written when teams.csv fails")
}

func TestClient_NoSources(t *testing.T) {
	fc := fetchConfig("")
	fc.URL = ""

	_, err := NewClient(fc, nil).FetchSeason(context.Background(), season, t.TempDir())
	require.ErrorIs(t, err, ErrNoSourcesAvailable)
}

func TestAttemptStats_String(t *testing.T) {
	s := AttemptStats{URLs: 3, SuccessfulURLs: 2, FailedURLs: 1, Requests: 5, Bytes: 42}

	assert.Equal(t, "URLs: 3 total, 2 success, 1 failed | Requests: 5 | Bytes: 42", s.String())
}
