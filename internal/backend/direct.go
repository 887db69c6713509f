package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
)

// DirectBackend fetches a URL with a plain HTTP client. It never requires
// credentials and is always available.
type DirectBackend struct {
	client    *http.Client
	userAgent string
	retrier   *Retrier
}

// NewDirectBackend builds a Direct backend from configuration.
func NewDirectBackend(cfg config.DirectConfig) *DirectBackend {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}
	return &DirectBackend{
		client:    &http.Client{},
		userAgent: userAgent,
		retrier:   NewRetrier(DefaultRetrierOptions()),
	}
}

// ID identifies this backend.
func (b *DirectBackend) ID() domain.BackendID { return domain.Direct }

// Available is always true: no credentials are required for plain HTTP.
func (b *DirectBackend) Available() bool { return true }

// Fetch retrieves a URL, classifying any failure into a FailureKind so the
// Strategy Engine can decide whether to fall back to another backend.
// Every retry shares one deadline: timeoutMS bounds the whole call, not
// each attempt.
func (b *DirectBackend) Fetch(ctx context.Context, url string, timeoutMS uint) domain.FetchOutcome {
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMS)*time.Millisecond)
	defer cancel()

	return b.retrier.Fetch(reqCtx, func() domain.FetchOutcome {
		return b.attempt(reqCtx, url)
	})
}

func (b *DirectBackend) attempt(reqCtx context.Context, url string) domain.FetchOutcome {
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return failure(domain.Direct, domain.FailureOther, 0, err)
	}

	headers := StealthHeaders(b.userAgent)
	// Leave Accept-Encoding to the transport: setting it by hand disables
	// net/http's transparent gzip decompression.
	delete(headers, "Accept-Encoding")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if reqCtx.Err() != nil {
			return failure(domain.Direct, domain.FailureTimeout, 0, reqCtx.Err())
		}
		return failure(domain.Direct, domain.FailureTransport, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(domain.Direct, domain.FailureTransport, resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		return failure(domain.Direct, domain.FailureHTTP, resp.StatusCode, errors.New(resp.Status))
	}

	mediaType := resp.Header.Get("Content-Type")
	return domain.FetchOutcome{
		Success:    true,
		Bytes:      body,
		MediaType:  mediaType,
		Backend:    domain.Direct,
		HTTPStatus: resp.StatusCode,
	}
}

// failure builds a failed FetchOutcome for the given backend and kind.
func failure(backend domain.BackendID, kind domain.FailureKind, httpStatus int, err error) domain.FetchOutcome {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return domain.FetchOutcome{
		Success:    false,
		Backend:    backend,
		Error:      msg,
		Kind:       kind,
		HTTPStatus: httpStatus,
	}
}
