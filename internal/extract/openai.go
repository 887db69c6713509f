package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIProvider speaks the OpenAI chat-completions wire format.
type OpenAIProvider struct {
	client      providerClient
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	apiKey      string
}

func NewOpenAIProvider(cfg ProviderConfig, httpClient *http.Client) (*OpenAIProvider, error) {
	return &OpenAIProvider{
		client:      newProviderClient("openai", httpClient),
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		apiKey:      cfg.APIKey,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) Complete(ctx context.Context, req *domain.LLMRequest) (*domain.LLMResponse, error) {
	messages := make([]openAIMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openAIMessage{Role: string(msg.Role), Content: msg.Content}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}
	temp := p.temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}

	wireReq := openAIRequest{Model: p.model, Messages: messages, MaxTokens: maxTokens, Temperature: temp}
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}

	status, body, err := p.client.post(ctx, p.baseURL+"/chat/completions", headers, wireReq)
	if err != nil {
		return nil, err
	}

	var wireResp openAIResponse
	if err := json.Unmarshal(body, &wireResp); err != nil {
		return nil, fmt.Errorf("openai: failed to parse response: %w", err)
	}

	if wireResp.Error != nil {
		return nil, &domain.LLMError{Provider: "openai", StatusCode: status, Message: wireResp.Error.Message}
	}
	if status != http.StatusOK {
		return nil, p.client.statusError(status, body)
	}
	if len(wireResp.Choices) == 0 {
		return nil, &domain.LLMError{Provider: "openai", Message: "no choices in response"}
	}

	choice := wireResp.Choices[0]
	return &domain.LLMResponse{
		Content:      choice.Message.Content,
		Model:        wireResp.Model,
		FinishReason: choice.FinishReason,
		Usage: domain.LLMUsage{
			PromptTokens:     wireResp.Usage.PromptTokens,
			CompletionTokens: wireResp.Usage.CompletionTokens,
			TotalTokens:      wireResp.Usage.TotalTokens,
		},
	}, nil
}
