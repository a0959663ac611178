package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig is used by the caption source unless overridden.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// wait returns the pause before retry number attempt+1, capped at MaxWait.
// A server-provided Retry-After wins when it is longer.
func (rc RetryConfig) wait(attempt int, err error) time.Duration {
	d := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > d {
		d = se.RetryAfter
	}
	if rc.MaxWait > 0 && d > rc.MaxWait {
		d = rc.MaxWait
	}
	return d
}

// RetryDo calls fn until it succeeds, returns a non-retryable error, or
// MaxRetries extra attempts are used up. Context cancellation stops it at once.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if !IsRetryable(err) || attempt >= rc.MaxRetries {
			return zero, err
		}

		d := rc.wait(attempt, err)
		slog.Debug("retry: backing off", slog.Int("attempt", attempt+1), slog.Duration("wait", d), slog.Any("error", err))
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		}
	}
}

// RetryHTTP runs fn with RetryDo, turning 429 and 5xx responses into retries.
// Other statuses are returned to the caller untouched. When retries run out
// on a retryable condition the error is marked with ErrTransient.
func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	resp, err := RetryDo(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		se := &StatusError{StatusCode: resp.StatusCode, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		resp.Body.Close()
		return nil, se
	})
	if err != nil && IsRetryable(err) {
		return nil, Transient(err)
	}
	return resp, err
}

// StatusError carries an unexpected HTTP status code.
type StatusError struct {
	StatusCode int
	RetryAfter time.Duration // from the Retry-After header, 0 if absent
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRetryable reports whether err is a rate limit, a server error, or a
// network failure.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return isRetryableStatus(se.StatusCode)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return true
	}

	// net.Error matches OpError too, so it goes last
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseRetryAfter accepts the delta-seconds form only.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
