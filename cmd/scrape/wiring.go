package main

import (
	"fmt"

	"github.com/quantmind-br/scrape-go/internal/backend"
	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
	"github.com/quantmind-br/scrape-go/internal/extract"
	"github.com/quantmind-br/scrape-go/internal/orchestrator"
	"github.com/quantmind-br/scrape-go/internal/parser"
	"github.com/quantmind-br/scrape-go/internal/registry"
	"github.com/quantmind-br/scrape-go/internal/store"
	"github.com/quantmind-br/scrape-go/internal/strategy"
	"github.com/quantmind-br/scrape-go/internal/utils"
)

// engine wires the Scrape Orchestrator together from configuration,
// constructing every collaborator and retaining its own handle. Close
// releases every resource holding a file handle, browser process, or DB
// handle.
type engine struct {
	orchestrator *orchestrator.Orchestrator
	rendering    *backend.RenderingBackend
	store        *store.Store
	extractor    *extract.Adapter
}

func (e *engine) Close() {
	if e.rendering != nil {
		_ = e.rendering.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
	if e.extractor != nil {
		_ = e.extractor.Close()
	}
}

func buildEngine(cfg *config.Config, log *utils.Logger) (*engine, error) {
	direct := backend.NewDirectBackend(cfg.Backends.Direct)

	rendering, err := backend.NewRenderingBackend(cfg.Backends.Rendering)
	if err != nil {
		return nil, fmt.Errorf("rendering backend: %w", err)
	}

	bypass, err := backend.NewBypassBackend(cfg.Backends.Bypass)
	if err != nil {
		return nil, fmt.Errorf("bypass backend: %w", err)
	}

	registryPath := config.ConfigDir() + "/strategy.json"
	reg, err := registry.New(registryPath)
	if err != nil {
		return nil, fmt.Errorf("strategy registry: %w", err)
	}

	eng := strategy.New([]domain.Backend{direct, rendering, bypass}, reg, log)

	chain := parser.NewChain()

	resourceStore, err := store.Open(store.Options{Directory: cfg.Cache.Directory})
	if err != nil {
		return nil, fmt.Errorf("resource store: %w", err)
	}

	var extractor *extract.Adapter
	var domainExtractor domain.Extractor
	if cfg.ExtractionEnabled() {
		extractor, err = extract.New(&cfg.LLM)
		if err != nil {
			log.Warn().Err(err).Msg("extraction adapter unavailable despite configured provider")
		} else {
			domainExtractor = extractor
		}
	}

	orch := orchestrator.New(resourceStore, eng, chain, domainExtractor, log)

	return &engine{orchestrator: orch, rendering: rendering, store: resourceStore, extractor: extractor}, nil
}
