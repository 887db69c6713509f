package domain

import "context"

// Backend is the uniform contract every fetch backend implements.
type Backend interface {
	// ID returns this backend's identity.
	ID() BackendID
	// Available reports whether the backend has what it needs to run
	// (e.g. credentials). Unavailable backends are excluded from the
	// strategy order at construction time.
	Available() bool
	// Fetch retrieves url, honoring timeoutMS as a wall-clock ceiling.
	// It never panics; failures are reported through FetchOutcome.
	Fetch(ctx context.Context, url string, timeoutMS uint) FetchOutcome
}

// StrategyRegistry persists per-host preferred-backend learning.
type StrategyRegistry interface {
	// Preferred returns the learned backend for host, if any.
	Preferred(host HostKey) (BackendID, bool)
	// RecordSuccess records that backend succeeded for host. Idempotent;
	// overwrites any existing preference.
	RecordSuccess(host HostKey, backend BackendID) error
}

// Parser decodes a fetched byte blob of the given media type into text.
type Parser interface {
	// Matches reports whether this parser handles mediaType.
	Matches(mediaType string) bool
	// Parse decodes raw into ParsedContent.
	Parse(raw []byte, mediaType string) (ParsedContent, error)
}

// ResourceStore is the URL-indexed, append-only content cache.
type ResourceStore interface {
	// FindByURL returns cached resources for url, newest first.
	FindByURL(ctx context.Context, url string) ([]CachedResource, error)
	// Read resolves a URI back to its CachedResource.
	Read(ctx context.Context, uri string) (CachedResource, error)
	// Write persists a new resource and returns its URI.
	Write(ctx context.Context, url, text string, metadata ResourceMetadata) (string, error)
}

// Extractor is the Extraction Adapter's contract: transform raw text given
// a natural-language query using an LLM provider. No retries.
type Extractor interface {
	Extract(ctx context.Context, text, query string) (ExtractionOutcome, error)
}

// ExtractionOutcome is what an Extractor call produces.
type ExtractionOutcome struct {
	Success bool
	Content string
}

// LLMProvider is the wire-level contract each LLM vendor client implements.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req *LLMRequest) (*LLMResponse, error)
	Close() error
}

// MessageRole identifies the speaker of an LLMMessage.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// LLMMessage is a single turn in a completion request.
type LLMMessage struct {
	Role    MessageRole
	Content string
}

// LLMRequest is a completion request sent to a provider.
type LLMRequest struct {
	Messages    []LLMMessage
	MaxTokens   int
	Temperature *float64
}

// LLMResponse is a provider's completion response.
type LLMResponse struct {
	Content      string
	Model        string
	FinishReason string
	Usage        LLMUsage
}

// LLMUsage reports token accounting for a completion.
type LLMUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
