// Package renderer drives the headless Chrome instance the Rendering
// backend fetches through. A Renderer owns one browser process and a
// bounded pool of reusable stealth tabs; Render navigates a tab, lets the
// page's scripts settle, and returns the final DOM as HTML.
package renderer

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Options configures a Renderer at construction.
type Options struct {
	// Timeout is the per-render ceiling applied when RenderOptions carries
	// none.
	Timeout time.Duration
	// MaxTabs bounds how many tabs render concurrently.
	MaxTabs int
	// BrowserPath overrides browser auto-detection.
	BrowserPath string
	// NoSandbox launches Chrome without its sandbox. Required inside most
	// containers; detected automatically for CI environments.
	NoSandbox bool
}

// RenderOptions controls a single Render call.
type RenderOptions struct {
	// Timeout is the wall-clock ceiling for this render.
	Timeout time.Duration
	// WaitStable, when positive, waits up to this long for in-flight
	// network requests to drain after the load event.
	WaitStable time.Duration
	// ScrollToEnd scrolls the page to the bottom before capture so
	// lazy-loaded content is included.
	ScrollToEnd bool
}

const (
	defaultRenderTimeout = 60 * time.Second
	defaultMaxTabs       = 2
)

// Renderer renders pages through a pooled headless browser.
type Renderer struct {
	browser *rod.Browser
	tabs    *tabPool
	timeout time.Duration
}

// BrowserPath reports the auto-detected browser binary, if any.
func BrowserPath() (string, bool) {
	return launcher.LookPath()
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRenderTimeout
	}
	if opts.MaxTabs <= 0 {
		opts.MaxTabs = defaultMaxTabs
	}
	if !opts.NoSandbox {
		opts.NoSandbox = runningInCI()
	}
	return opts
}

func runningInCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// New launches a headless browser and prepares its tab pool.
func New(opts Options) (*Renderer, error) {
	opts = normalizeOptions(opts)

	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled")
	if opts.BrowserPath != "" {
		l = l.Bin(opts.BrowserPath)
	}
	if opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	return &Renderer{
		browser: browser,
		tabs:    newTabPool(browser, opts.MaxTabs),
		timeout: opts.Timeout,
	}, nil
}

// Render navigates url in a pooled tab and returns the rendered HTML.
func (r *Renderer) Render(ctx context.Context, url string, opts RenderOptions) (string, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := r.tabs.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer r.tabs.release(page)

	page = page.Context(ctx)
	if err := hardenTab(page); err != nil {
		return "", err
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if opts.WaitStable > 0 {
		// Best effort: a page that keeps polling never goes idle, and the
		// load event already fired.
		wait := page.WaitRequestIdle(opts.WaitStable, nil, nil, nil)
		wait()
	}

	if opts.ScrollToEnd {
		scrollToEnd(page)
	}

	return page.HTML()
}

// scrollToEnd walks the page to the bottom so lazy-loaded content mounts,
// then returns to the top. Stops once the document height stops growing.
func scrollToEnd(page *rod.Page) {
	result, err := page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return
	}
	lastHeight := result.Value.Int()

	for i := 0; i < 10; i++ {
		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return
		}
		time.Sleep(500 * time.Millisecond)

		result, err := page.Eval(`() => document.body.scrollHeight`)
		if err != nil {
			return
		}
		height := result.Value.Int()
		if height == lastHeight {
			break
		}
		lastHeight = height
	}

	_, _ = page.Eval(`() => window.scrollTo(0, 0)`)
}

// Close tears down the tab pool and the browser process.
func (r *Renderer) Close() error {
	if r.tabs != nil {
		r.tabs.close()
		r.tabs = nil
	}
	if r.browser != nil {
		browser := r.browser
		r.browser = nil
		return browser.Close()
	}
	return nil
}

// ErrPoolClosed is returned when a render races with Close.
var ErrPoolClosed = errors.New("renderer: tab pool is closed")
