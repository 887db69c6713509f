package backend

import (
	"context"
	"io"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
)

// BypassBackend fetches a URL through a TLS-fingerprint-randomized client,
// for sites that block on JA3/JA4 fingerprint rather than on missing
// JavaScript execution. It requires a configured proxy to be available:
// without one, the bypass offers no advantage over Direct and exposes the
// operator's real egress IP.
type BypassBackend struct {
	client    tls_client.HttpClient
	userAgent string
	available bool
	retrier   *Retrier
}

// NewBypassBackend builds a Bypass backend from configuration. If no proxy
// is configured, Available() reports false and callers should skip it.
func NewBypassBackend(cfg config.BypassConfig) (*BypassBackend, error) {
	available := cfg.Enabled && cfg.ProxyURL != ""
	if !available {
		return &BypassBackend{available: false}, nil
	}

	profile := profiles.Chrome_131
	jar := tls_client.NewCookieJar()
	opts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(120),
		tls_client.WithClientProfile(profile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithCookieJar(jar),
		tls_client.WithProxyUrl(cfg.ProxyURL),
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), opts...)
	if err != nil {
		return nil, err
	}

	return &BypassBackend{
		client:    client,
		userAgent: RandomUserAgent(),
		available: true,
		retrier:   NewRetrier(DefaultRetrierOptions()),
	}, nil
}

// ID identifies this backend.
func (b *BypassBackend) ID() domain.BackendID { return domain.Bypass }

// Available reports whether a proxy endpoint is configured.
func (b *BypassBackend) Available() bool { return b.available }

// Fetch retrieves a URL through the fingerprint-randomized client. Every
// retry shares one deadline: timeoutMS bounds the whole call, not each
// attempt.
func (b *BypassBackend) Fetch(ctx context.Context, url string, timeoutMS uint) domain.FetchOutcome {
	if !b.available {
		return failure(domain.Bypass, domain.FailureUnavailable, 0, errBackendUnavailable)
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMS)*time.Millisecond)
	defer cancel()

	return b.retrier.Fetch(reqCtx, func() domain.FetchOutcome {
		return b.attempt(reqCtx, url)
	})
}

func (b *BypassBackend) attempt(reqCtx context.Context, url string) domain.FetchOutcome {
	req, err := fhttp.NewRequestWithContext(reqCtx, fhttp.MethodGet, url, nil)
	if err != nil {
		return failure(domain.Bypass, domain.FailureOther, 0, err)
	}

	headers := StealthHeaders(b.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if reqCtx.Err() != nil {
			return failure(domain.Bypass, domain.FailureTimeout, 0, reqCtx.Err())
		}
		return failure(domain.Bypass, domain.FailureTransport, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(domain.Bypass, domain.FailureTransport, resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		return failure(domain.Bypass, domain.FailureHTTP, resp.StatusCode, statusError(resp.StatusCode))
	}

	mediaType := resp.Header.Get("Content-Type")
	return domain.FetchOutcome{
		Success:    true,
		Bytes:      body,
		MediaType:  mediaType,
		Backend:    domain.Bypass,
		HTTPStatus: resp.StatusCode,
	}
}

type backendUnavailableError struct{}

func (backendUnavailableError) Error() string { return "bypass backend has no proxy configured" }

var errBackendUnavailable = backendUnavailableError{}

type statusCodeError int

func (e statusCodeError) Error() string { return fhttp.StatusText(int(e)) }

func statusError(code int) error { return statusCodeError(code) }
