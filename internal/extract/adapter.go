// Package extract implements the Extraction Adapter: it forwards
// raw scraped text and a natural-language query to whichever LLM provider
// is configured, and is itself a black box to the orchestrator — its
// value is exactly the text payload it returns, with no retries.
package extract

import (
	"context"
	"fmt"

	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
)

// extractionPrompt is the system instruction every provider receives
// ahead of the page text and the caller's query.
const extractionPrompt = "You are a content extraction assistant. Given raw " +
	"page content and a query, extract and return only the information " +
	"relevant to the query. Be concise and do not include commentary about " +
	"your extraction process."

// Adapter implements domain.Extractor over a single configured LLMProvider.
type Adapter struct {
	provider domain.LLMProvider
}

var _ domain.Extractor = (*Adapter)(nil)

// New builds an Adapter from configuration. It returns
// domain.ErrLLMNotConfigured when no provider is named, and another
// domain.ErrLLM* error when the named provider is unknown or lacks its API
// key, model, or base URL; the caller should treat any of these as "the
// extraction feature is absent" rather than as an orchestration error.
func New(cfg *config.LLMConfig) (*Adapter, error) {
	provider, err := NewProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Adapter{provider: provider}, nil
}

// Close releases the underlying provider's resources.
func (a *Adapter) Close() error {
	if a.provider == nil {
		return nil
	}
	return a.provider.Close()
}

// Extract sends text and query to the configured provider and returns its
// completion. No retries: a provider error is reported as
// ExtractionError so the orchestrator can downgrade it to a diagnostic.
func (a *Adapter) Extract(ctx context.Context, text, query string) (domain.ExtractionOutcome, error) {
	req := &domain.LLMRequest{
		Messages: []domain.LLMMessage{
			{Role: domain.RoleSystem, Content: extractionPrompt},
			{Role: domain.RoleUser, Content: fmt.Sprintf("Query: %s\n\nContent:\n%s", query, text)},
		},
	}

	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		return domain.ExtractionOutcome{Success: false}, &domain.ExtractionError{
			Provider: a.provider.Name(),
			Err:      err,
		}
	}

	return domain.ExtractionOutcome{Success: true, Content: resp.Content}, nil
}
