package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// providerClient is the request/response plumbing every hand-rolled LLM
// provider client builds on: marshal a typed request body, POST it with
// provider-specific headers, and hand back the raw response bytes for the
// caller to decode into its own response shape. Each provider still owns
// its wire format entirely; only the transport mechanics are shared.
type providerClient struct {
	http *http.Client
	name string
}

func newProviderClient(name string, httpClient *http.Client) providerClient {
	return providerClient{http: httpClient, name: name}
}

// post marshals body, issues a POST to url with headers applied on top of
// the common Content-Type, and returns the status code and raw response
// bytes. Transport-level failures (the request never got a response) are
// wrapped as a domain.LLMError so every provider reports them the same way.
func (c providerClient) post(ctx context.Context, url string, headers map[string]string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: marshal request: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, &domain.LLMError{
			Provider: c.name,
			Message:  fmt.Sprintf("request failed: %v", err),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: read response: %w", c.name, err)
	}
	return resp.StatusCode, respBody, nil
}

// statusError maps a non-2xx status code to a domain.LLMError, tagging the
// two statuses callers care about (authentication, rate limiting) with
// their sentinel; anything else carries the raw
// response body as its message.
func (c providerClient) statusError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return &domain.LLMError{
			Provider:   c.name,
			StatusCode: statusCode,
			Message:    "authentication failed",
			Err:        domain.ErrLLMAuthFailed,
		}
	case http.StatusTooManyRequests:
		return &domain.LLMError{
			Provider:   c.name,
			StatusCode: statusCode,
			Message:    "rate limit exceeded",
			Err:        domain.ErrLLMRateLimited,
		}
	default:
		return &domain.LLMError{
			Provider:   c.name,
			StatusCode: statusCode,
			Message:    string(body),
		}
	}
}
