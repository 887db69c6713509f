// Package strategy implements the Strategy Engine: it orders the available
// backends for a host, attempts them in sequence, and records the winner
// back into the Strategy Registry so future scrapes of the same host try
// the right backend first.
package strategy

import (
	"context"

	"github.com/quantmind-br/scrape-go/internal/domain"
	"github.com/quantmind-br/scrape-go/internal/utils"
)

// Engine runs the backend attempt loop for a single fetch.
type Engine struct {
	backends []domain.Backend
	registry domain.StrategyRegistry
	logger   *utils.Logger
}

// New builds an Engine over a fixed set of backends, in the order they
// should be considered by default. Unavailable backends are filtered out
// at construction time.
func New(backends []domain.Backend, registry domain.StrategyRegistry, logger *utils.Logger) *Engine {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	available := make([]domain.Backend, 0, len(backends))
	for _, b := range backends {
		if b.Available() {
			available = append(available, b)
		}
	}
	return &Engine{backends: available, registry: registry, logger: logger.WithComponent("strategy")}
}

// Fetch attempts the host's backends in order until one succeeds, a failure
// that does not warrant fallback (such as a 404) short-circuits the loop, or
// every attempted backend has failed.
func (e *Engine) Fetch(ctx context.Context, host domain.HostKey, url string, timeoutMS uint) (domain.FetchOutcome, error) {
	order := e.order(host)
	if len(order) == 0 {
		return domain.FetchOutcome{}, &domain.AllBackendsFailed{TimeoutMS: timeoutMS}
	}

	var attempts []*domain.BackendFailure
	log := e.logger.WithURL(url)

	for _, backend := range order {
		blog := log.WithBackend(backend.ID().String())
		blog.Debug().Msg("attempting fetch")

		outcome := backend.Fetch(ctx, url, timeoutMS)
		if outcome.Success {
			if err := e.registry.RecordSuccess(host, backend.ID()); err != nil {
				blog.Warn().Err(err).Msg("failed to record backend preference")
			}
			return outcome, nil
		}

		failure := &domain.BackendFailure{
			Backend:    backend.ID(),
			Kind:       outcome.Kind,
			HTTPStatus: outcome.HTTPStatus,
			Err:        errFromOutcome(outcome),
		}
		attempts = append(attempts, failure)

		if !shouldFallback(outcome) {
			blog.Debug().Str("kind", string(outcome.Kind)).Msg("failure is authoritative; not falling back")
			break
		}
		blog.Debug().Str("kind", string(outcome.Kind)).Msg("falling back to next backend")
	}

	return domain.FetchOutcome{}, &domain.AllBackendsFailed{Attempts: attempts, TimeoutMS: timeoutMS}
}

// order computes the attempt order per the preference-pinning rule: if the
// registry has a learned preference that is currently available, it goes
// first, followed by the remaining backends in default order. Otherwise the
// default order applies directly.
func (e *Engine) order(host domain.HostKey) []domain.Backend {
	preferred, ok := e.registry.Preferred(host)
	if !ok {
		return e.backends
	}

	ordered := make([]domain.Backend, 0, len(e.backends))
	var pinned domain.Backend
	for _, b := range e.backends {
		if b.ID() == preferred {
			pinned = b
			continue
		}
		ordered = append(ordered, b)
	}
	if pinned == nil {
		return e.backends
	}
	return append([]domain.Backend{pinned}, ordered...)
}

// shouldFallback decides whether a failed outcome warrants trying the next
// backend. A 404 is authoritative: the resource does not exist, and no
// stronger backend will change that.
func shouldFallback(o domain.FetchOutcome) bool {
	switch o.Kind {
	case domain.FailureTimeout, domain.FailureTransport:
		return true
	case domain.FailureHTTP:
		switch o.HTTPStatus {
		case 401, 403, 429:
			return true
		default:
			return o.HTTPStatus >= 500
		}
	default:
		return false
	}
}

type outcomeError struct{ msg string }

func (e outcomeError) Error() string { return e.msg }

func errFromOutcome(o domain.FetchOutcome) error {
	if o.Error == "" {
		return nil
	}
	return outcomeError{msg: o.Error}
}
