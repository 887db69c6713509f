package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
)

func TestDirectBackend_FetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	b := NewDirectBackend(config.DirectConfig{})
	outcome := b.Fetch(context.Background(), server.URL, 5000)

	require.True(t, outcome.Success)
	assert.Equal(t, domain.Direct, outcome.Backend)
	assert.Equal(t, []byte("hello"), outcome.Bytes)
	assert.Contains(t, outcome.MediaType, "text/plain")
	assert.Equal(t, http.StatusOK, outcome.HTTPStatus)
}

func TestDirectBackend_404Classified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	b := NewDirectBackend(config.DirectConfig{})
	outcome := b.Fetch(context.Background(), server.URL, 5000)

	require.False(t, outcome.Success)
	assert.Equal(t, domain.FailureHTTP, outcome.Kind)
	assert.Equal(t, http.StatusNotFound, outcome.HTTPStatus)
}

func TestDirectBackend_TimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	b := NewDirectBackend(config.DirectConfig{})

	start := time.Now()
	outcome := b.Fetch(context.Background(), server.URL, 50)
	elapsed := time.Since(start)

	require.False(t, outcome.Success)
	assert.Equal(t, domain.FailureTimeout, outcome.Kind)
	assert.NotEmpty(t, outcome.Error)
	// timeout_ms bounds the whole Fetch call, retries included.
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestDirectBackend_TransportErrorClassified(t *testing.T) {
	b := NewDirectBackend(config.DirectConfig{})

	outcome := b.Fetch(context.Background(), "http://127.0.0.1:1/", 5000)

	require.False(t, outcome.Success)
	assert.Equal(t, domain.FailureTransport, outcome.Kind)
}

func TestDirectBackend_AlwaysAvailable(t *testing.T) {
	b := NewDirectBackend(config.DirectConfig{})
	assert.True(t, b.Available())
	assert.Equal(t, domain.Direct, b.ID())
}

func TestStealthHeaders_ChromeClientHints(t *testing.T) {
	chromeUA := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	headers := StealthHeaders(chromeUA)
	assert.Equal(t, chromeUA, headers["User-Agent"])
	assert.Contains(t, headers, "Sec-CH-UA")

	firefoxUA := "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"
	headers = StealthHeaders(firefoxUA)
	assert.NotContains(t, headers, "Sec-CH-UA")
}

func TestShouldRetryStatus(t *testing.T) {
	assert.True(t, ShouldRetryStatus(429))
	assert.True(t, ShouldRetryStatus(503))
	assert.True(t, ShouldRetryStatus(522))
	assert.False(t, ShouldRetryStatus(404))
	assert.False(t, ShouldRetryStatus(200))
	assert.False(t, ShouldRetryStatus(401))
}

func TestRetrier_StopsOnNonRetryableOutcome(t *testing.T) {
	r := NewRetrier(RetrierOptions{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 2})

	calls := 0
	outcome := r.Fetch(context.Background(), func() domain.FetchOutcome {
		calls++
		return domain.FetchOutcome{Success: false, Kind: domain.FailureHTTP, HTTPStatus: 404}
	})

	assert.Equal(t, 1, calls)
	assert.False(t, outcome.Success)
}

func TestRetrier_RetriesTransientFailure(t *testing.T) {
	r := NewRetrier(RetrierOptions{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 2})

	calls := 0
	outcome := r.Fetch(context.Background(), func() domain.FetchOutcome {
		calls++
		if calls < 2 {
			return domain.FetchOutcome{Success: false, Kind: domain.FailureTransport, Error: "connection reset"}
		}
		return domain.FetchOutcome{Success: true, Bytes: []byte("ok")}
	})

	assert.Equal(t, 2, calls)
	assert.True(t, outcome.Success)
}
