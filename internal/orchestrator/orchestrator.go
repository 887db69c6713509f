// Package orchestrator implements the Scrape Orchestrator: the
// top-level algorithm that ties the cache, the Strategy Engine, the
// Parser Chain, and the Extraction Adapter together into a single
// scrape(request) call.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/quantmind-br/scrape-go/internal/domain"
	"github.com/quantmind-br/scrape-go/internal/hostkey"
	"github.com/quantmind-br/scrape-go/internal/utils"
)

// FetchEngine is the subset of the Strategy Engine the orchestrator needs.
// Defining it here (rather than importing *strategy.Engine directly) keeps
// the orchestrator testable with a fake.
type FetchEngine interface {
	Fetch(ctx context.Context, host domain.HostKey, url string, timeoutMS uint) (domain.FetchOutcome, error)
}

// ParserChain is the subset of the Parser Chain the orchestrator needs.
type ParserChain interface {
	Parse(raw []byte, mediaType string) (domain.ParsedContent, error)
}

// Orchestrator runs the cache → strategy → parse → extract → window →
// persist pipeline.
type Orchestrator struct {
	store     domain.ResourceStore
	engine    FetchEngine
	parser    ParserChain
	extractor domain.Extractor
	logger    *utils.Logger
}

// New builds an Orchestrator. extractor may be nil: when it is, the
// extract_query option is effectively a no-op passthrough (callers should
// not surface the option at all when no extractor is configured — see
// cmd/scrape for where that feature flag is computed).
func New(store domain.ResourceStore, engine FetchEngine, parser ParserChain, extractor domain.Extractor, logger *utils.Logger) *Orchestrator {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Orchestrator{store: store, engine: engine, parser: parser, extractor: extractor, logger: logger}
}

const (
	defaultTimeoutMS = 60000
	defaultMaxChars  = 100000
)

// Scrape runs a single scrape to completion. It returns a tool-level error
// only for InvalidArgument, AllBackendsFailed, a fatal StoreError, and a
// parse failure (ErrParse);
// extraction failures and non-fatal store failures are downgraded into the
// returned result.
func (o *Orchestrator) Scrape(ctx context.Context, req domain.ScrapeRequest) (domain.ScrapeResult, error) {
	if req.URL == "" {
		return domain.ScrapeResult{}, fmt.Errorf("%w: url is required", domain.ErrInvalidArgument)
	}
	if !utils.IsHTTPURL(req.URL) {
		return domain.ScrapeResult{}, fmt.Errorf("%w: url must be an absolute http(s) URL: %s", domain.ErrInvalidArgument, req.URL)
	}
	if req.TimeoutMS == 0 {
		req.TimeoutMS = defaultTimeoutMS
	}
	if req.MaxChars == 0 {
		req.MaxChars = defaultMaxChars
	}

	log := o.logger.WithURL(req.URL)

	if !req.ForceRescrape {
		cached, err := o.store.FindByURL(ctx, req.URL)
		if err != nil {
			// A cache-hit lookup's read failure is fatal: there is no
			// fallback path that re-derives the cached content.
			return domain.ScrapeResult{}, err
		}
		if len(cached) > 0 {
			return o.windowCacheHit(cached[0], req), nil
		}
	}

	host, err := hostkey.Derive(req.URL)
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	outcome, err := o.engine.Fetch(ctx, host, req.URL, req.TimeoutMS)
	if err != nil {
		log.Warn().Err(err).Msg("all backends failed")
		return domain.ScrapeResult{}, err
	}

	parsed, err := o.parser.Parse(outcome.Bytes, outcome.MediaType)
	if err != nil {
		return domain.ScrapeResult{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	rawText := parsed.Text
	if req.ExtractQuery != "" && o.extractor != nil {
		rawText = o.applyExtraction(ctx, rawText, req.ExtractQuery, log)
	}

	backendLabel := outcome.Backend.String()
	sliced, truncated := window(rawText, req.StartIndex, req.MaxChars)

	var uri string
	if req.SaveResult {
		metadata := domain.ResourceMetadata{
			URL:           req.URL,
			Backend:       backendLabel,
			Timestamp:     time.Now().UTC(),
			ContentLength: len(rawText),
			WasTruncated:  truncated,
			ExtractQuery:  req.ExtractQuery,
		}
		writtenURI, writeErr := o.store.Write(ctx, req.URL, rawText, metadata)
		if writeErr != nil {
			log.Warn().Err(writeErr).Msg("resource store write failed; continuing without persistence")
		} else {
			uri = writtenURI
		}
	}

	annotation := fmt.Sprintf("\n\n---\nScraped using: %s", backendLabel)
	if truncated {
		next := req.StartIndex + req.MaxChars
		annotation += fmt.Sprintf("\n(truncated; next start_index: %d)", next)
	}

	return domain.ScrapeResult{
		InlineText:     sliced + annotation,
		ResourceHandle: uri,
		HasResource:    uri != "",
		Truncated:      truncated,
	}, nil
}

// windowCacheHit builds the result for a cache hit: the stored text is
// windowed but never re-extracted or re-persisted.
func (o *Orchestrator) windowCacheHit(cached domain.CachedResource, req domain.ScrapeRequest) domain.ScrapeResult {
	sliced, truncated := window(cached.Text, req.StartIndex, req.MaxChars)

	annotation := fmt.Sprintf(
		"\n\n---\nServed from cache (originally scraped using: %s); Cached at: %s",
		cached.Metadata.Backend,
		cached.Metadata.Timestamp.Format(time.RFC3339),
	)
	if truncated {
		next := req.StartIndex + req.MaxChars
		annotation += fmt.Sprintf("\n(truncated; next start_index: %d)", next)
	}

	return domain.ScrapeResult{
		InlineText:     sliced + annotation,
		ResourceHandle: cached.URI,
		HasResource:    true,
		Truncated:      truncated,
	}
}

// applyExtraction runs the Extraction Adapter and downgrades a failure to
// an in-content diagnostic rather than aborting the scrape.
func (o *Orchestrator) applyExtraction(ctx context.Context, text, query string, log *utils.Logger) string {
	outcome, err := o.extractor.Extract(ctx, text, query)
	if err != nil {
		log.Warn().Err(err).Msg("extraction failed; returning raw text")
		return fmt.Sprintf("[extraction failed: %v]\n\n%s", err, text)
	}
	if !outcome.Success {
		return fmt.Sprintf("[extraction failed]\n\n%s", text)
	}
	return outcome.Content
}

// window slices text to the (start, maxChars) range over its runes, not
// bytes, so multi-byte text windows cleanly.
func window(text string, start, maxChars uint) (string, bool) {
	runes := []rune(text)
	total := uint(len(runes))

	if start >= total {
		return "", false
	}

	remaining := runes[start:]
	if uint(len(remaining)) > maxChars {
		return string(remaining[:maxChars]), true
	}
	return string(remaining), false
}
