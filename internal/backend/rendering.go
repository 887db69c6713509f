package backend

import (
	"context"
	"time"

	"github.com/quantmind-br/scrape-go/internal/config"
	"github.com/quantmind-br/scrape-go/internal/domain"
	"github.com/quantmind-br/scrape-go/internal/renderer"
)

// RenderingBackend fetches a URL through a pooled headless-Chrome instance,
// for pages whose content only exists after client-side JavaScript runs.
type RenderingBackend struct {
	r         *renderer.Renderer
	available bool
	scroll    bool
}

// NewRenderingBackend launches (or skips launching, if disabled/unavailable)
// a headless browser pool per configuration.
func NewRenderingBackend(cfg config.RenderingConfig) (*RenderingBackend, error) {
	if !cfg.Enabled {
		return &RenderingBackend{available: false}, nil
	}

	browserPath := cfg.BrowserPath
	if browserPath == "" {
		path, ok := renderer.BrowserPath()
		if !ok {
			return &RenderingBackend{available: false}, nil
		}
		browserPath = path
	}

	r, err := renderer.New(renderer.Options{
		Timeout:     cfg.JSTimeout,
		MaxTabs:     cfg.PoolSize,
		BrowserPath: browserPath,
	})
	if err != nil {
		return &RenderingBackend{available: false}, nil
	}

	return &RenderingBackend{r: r, available: true, scroll: cfg.ScrollToEnd}, nil
}

// ID identifies this backend.
func (b *RenderingBackend) ID() domain.BackendID { return domain.Rendering }

// Available reports whether a browser binary was found and launched.
func (b *RenderingBackend) Available() bool { return b.available }

// Fetch renders a URL with JavaScript execution and returns the resulting
// HTML as the fetch outcome's body.
func (b *RenderingBackend) Fetch(ctx context.Context, url string, timeoutMS uint) domain.FetchOutcome {
	if !b.available {
		return failure(domain.Rendering, domain.FailureUnavailable, 0, errBackendUnavailable)
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMS)*time.Millisecond)
	defer cancel()

	opts := renderer.RenderOptions{
		Timeout:     time.Duration(timeoutMS) * time.Millisecond,
		WaitStable:  2 * time.Second,
		ScrollToEnd: b.scroll,
	}

	html, err := b.r.Render(reqCtx, url, opts)
	if err != nil {
		if reqCtx.Err() != nil {
			return failure(domain.Rendering, domain.FailureTimeout, 0, err)
		}
		return failure(domain.Rendering, domain.FailureTransport, 0, err)
	}

	return domain.FetchOutcome{
		Success:   true,
		Bytes:     []byte(html),
		MediaType: "text/html; charset=utf-8",
		Backend:   domain.Rendering,
	}
}

// Close releases the underlying browser pool.
func (b *RenderingBackend) Close() error {
	if b.r != nil {
		return b.r.Close()
	}
	return nil
}
