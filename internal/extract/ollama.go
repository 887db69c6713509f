package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int64         `json:"prompt_eval_count"`
	EvalCount       int64         `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// OllamaProvider speaks the Ollama local chat wire format. Unlike the
// hosted providers it needs no API key: Complete sends no auth header.
type OllamaProvider struct {
	client      providerClient
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

func NewOllamaProvider(cfg ProviderConfig, httpClient *http.Client) (*OllamaProvider, error) {
	return &OllamaProvider{
		client:      newProviderClient("ollama", httpClient),
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Close() error { return nil }

func (p *OllamaProvider) Complete(ctx context.Context, req *domain.LLMRequest) (*domain.LLMResponse, error) {
	messages := make([]ollamaMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = ollamaMessage{Role: string(msg.Role), Content: msg.Content}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}
	temp := p.temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}

	wireReq := ollamaRequest{Model: p.model, Messages: messages, Stream: false}
	if maxTokens > 0 || temp > 0 {
		wireReq.Options = &ollamaOptions{Temperature: temp, NumPredict: maxTokens}
	}

	status, body, err := p.client.post(ctx, p.baseURL+"/api/chat", nil, wireReq)
	if err != nil {
		return nil, err
	}

	var wireResp ollamaResponse
	if jsonErr := json.Unmarshal(body, &wireResp); jsonErr != nil {
		return nil, fmt.Errorf("ollama: failed to parse response: %w", jsonErr)
	}

	if status != http.StatusOK {
		if wireResp.Error != "" {
			return nil, p.client.statusError(status, []byte(wireResp.Error))
		}
		return nil, p.client.statusError(status, body)
	}
	if wireResp.Error != "" {
		return nil, &domain.LLMError{Provider: "ollama", Message: wireResp.Error}
	}

	finishReason := "stop"
	if !wireResp.Done {
		finishReason = "length"
	}

	return &domain.LLMResponse{
		Content:      wireResp.Message.Content,
		Model:        wireResp.Model,
		FinishReason: finishReason,
		Usage: domain.LLMUsage{
			PromptTokens:     int(wireResp.PromptEvalCount),
			CompletionTokens: int(wireResp.EvalCount),
			TotalTokens:      int(wireResp.PromptEvalCount + wireResp.EvalCount),
		},
	}, nil
}
