package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantmind-br/scrape-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	cfg := ProviderConfig{
		APIKey:      "test-key",
		BaseURL:     "https://api.openai.com/v1/",
		Model:       "gpt-4",
		MaxTokens:   1000,
		Temperature: 0.7,
	}

	provider, err := NewOpenAIProvider(cfg, &http.Client{Timeout: 30 * time.Second})
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
}

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-4",
			"choices": [{"message": {"role": "assistant", "content": "Test response"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, server.Client())
	require.NoError(t, err)

	req := &domain.LLMRequest{Messages: []domain.LLMMessage{{Role: domain.RoleUser, Content: "Hello"}}}
	resp, err := provider.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Test response", resp.Content)
	assert.Equal(t, "gpt-4", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid API key"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, server.Client())
	require.NoError(t, err)

	req := &domain.LLMRequest{Messages: []domain.LLMMessage{{Role: domain.RoleUser, Content: "Hello"}}}
	resp, err := provider.Complete(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, resp)

	var llmErr *domain.LLMError
	assert.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "openai", llmErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, llmErr.StatusCode)
	assert.Contains(t, llmErr.Message, "Invalid API key")
}

func TestOpenAIProvider_Complete_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, server.Client())
	require.NoError(t, err)

	req := &domain.LLMRequest{Messages: []domain.LLMMessage{{Role: domain.RoleUser, Content: "Hello"}}}
	resp, err := provider.Complete(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, resp)

	var llmErr *domain.LLMError
	assert.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "openai", llmErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, llmErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrLLMRateLimited)
}

func TestOpenAIProvider_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model": "gpt-4", "choices": [], "usage": {}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, server.Client())
	require.NoError(t, err)

	req := &domain.LLMRequest{Messages: []domain.LLMMessage{{Role: domain.RoleUser, Content: "Hello"}}}
	resp, err := provider.Complete(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIProvider_Close(t *testing.T) {
	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", BaseURL: "https://api.openai.com/v1", Model: "gpt-4"}, &http.Client{})
	require.NoError(t, err)
	assert.NoError(t, provider.Close())
}

func TestOpenAIProvider_Complete_WithContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4"}, server.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := &domain.LLMRequest{Messages: []domain.LLMMessage{{Role: domain.RoleUser, Content: "Hello"}}}
	_, err = provider.Complete(ctx, req)
	assert.Error(t, err)
}
