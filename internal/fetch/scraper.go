// Package fetch downloads a season's players and teams exports from the
// source repository, retrying transient failures and falling back to
// mirror URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"plimport/internal/config"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrTooLarge             = errors.New("response exceeds size limit")
)

const userAgent = "plimport (+https://github.com/olbauday/FPL-Core-Insights)"

// Scraper performs GET requests with config-driven retry logic.
type Scraper struct {
	client   *http.Client
	retry    config.RetryPolicy
	maxBytes int64
}

// NewScraper creates a scraper with the given retry policy and body limit.
func NewScraper(retry config.RetryPolicy, maxBytes int64) *Scraper {
	return &Scraper{
		client:   &http.Client{Timeout: retry.GetTimeout()},
		retry:    retry,
		maxBytes: maxBytes,
	}
}

// ScrapeWithMetrics returns (body, statusCode, attempts, error). Network
// errors and retryable status codes are retried up to the policy's
// MaxAttempts; other status codes fail at once.
func (s *Scraper) ScrapeWithMetrics(ctx context.Context, url string) ([]byte, int, int, error) {
	var (
		lastErr        error
		lastStatusCode int
	)

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if err := sleep(ctx, s.retry.GetRetryDelay(attempt)); err != nil {
			return nil, lastStatusCode, attempt - 1, err
		}

		body, status, err := s.get(ctx, url)
		lastStatusCode = status

		if err == nil {
			return body, status, attempt, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, s.retry.MaxAttempts, err)

		if ctx.Err() != nil {
			return nil, status, attempt, ctx.Err()
		}

		if status != 0 && !isRetryableStatus(status) {
			return nil, status, attempt, lastErr
		}
	}

	return nil, lastStatusCode, s.retry.MaxAttempts, lastErr
}

// Scrape fetches url and returns its body.
func (s *Scraper) Scrape(ctx context.Context, url string) ([]byte, error) {
	body, _, _, err := s.ScrapeWithMetrics(ctx, url)

	return body, err
}

func (s *Scraper) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > s.maxBytes {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d bytes", ErrTooLarge, s.maxBytes)
	}

	return body, resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusBadGateway,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
