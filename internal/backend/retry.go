package backend

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// Retrier retries a single backend's fetch attempt on transient failures.
// Every attempt runs under the caller's context, so a backend that wraps
// the whole loop in one timeout_ms deadline keeps that deadline as the
// wall-clock ceiling for its entire Fetch call. It never crosses backend
// boundaries; falling over to a different backend is the Strategy
// Engine's job, not this one's.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

// RetrierOptions configures a Retrier.
type RetrierOptions struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetrierOptions returns sane defaults for in-backend retrying.
func DefaultRetrierOptions() RetrierOptions {
	return RetrierOptions{
		MaxRetries:      2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
	}
}

// NewRetrier builds a Retrier, clamping invalid option values to defaults.
func NewRetrier(opts RetrierOptions) *Retrier {
	defaults := DefaultRetrierOptions()
	if opts.MaxRetries < 0 {
		opts.MaxRetries = defaults.MaxRetries
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = defaults.InitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = defaults.MaxInterval
	}
	if opts.Multiplier <= 1.0 {
		opts.Multiplier = defaults.Multiplier
	}
	return &Retrier{
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		maxInterval:     opts.MaxInterval,
		multiplier:      opts.Multiplier,
	}
}

func (r *Retrier) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.Multiplier = r.multiplier
	b.RandomizationFactor = 0.3
	return backoff.WithMaxRetries(b, uint64(r.maxRetries))
}

// Fetch retries operation while its outcome is retryable, stopping as soon
// as it succeeds, exhausts retries, or the context is cancelled. The final
// outcome (successful or not) is always returned.
func (r *Retrier) Fetch(ctx context.Context, operation func() domain.FetchOutcome) domain.FetchOutcome {
	var last domain.FetchOutcome

	_ = backoff.Retry(func() error {
		last = operation()
		if last.Success || !isRetryableOutcome(last) {
			return nil
		}
		return errRetryableOutcome
	}, backoff.WithContext(r.newBackoff(), ctx))

	return last
}

var errRetryableOutcome = retryableOutcomeError{}

type retryableOutcomeError struct{}

func (retryableOutcomeError) Error() string { return "retryable fetch outcome" }

// isRetryableOutcome decides whether a failed fetch is worth retrying
// within the same backend, as opposed to handing the attempt loop over to
// the Strategy Engine's next backend.
func isRetryableOutcome(o domain.FetchOutcome) bool {
	switch o.Kind {
	case domain.FailureTimeout, domain.FailureTransport:
		return true
	case domain.FailureHTTP:
		return ShouldRetryStatus(o.HTTPStatus)
	default:
		return false
	}
}

// ShouldRetryStatus reports whether an HTTP status code is transient enough
// to retry within a backend (rate limiting, gateway errors, and Cloudflare's
// extended 5xx range).
func ShouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case 429, 502, 503, 504:
		return true
	}
	return statusCode >= 520 && statusCode <= 530
}
