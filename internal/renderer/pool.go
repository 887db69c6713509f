package renderer

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
)

// tabPool bounds how many browser tabs exist at once. Tabs are created
// lazily up to the cap and recycled between renders; a render that finds
// every tab busy blocks until one is released or its context expires.
type tabPool struct {
	browser *rod.Browser
	idle    chan *rod.Page

	mu      sync.Mutex
	spawned int
	max     int
	closed  bool
}

func newTabPool(browser *rod.Browser, max int) *tabPool {
	return &tabPool{
		browser: browser,
		idle:    make(chan *rod.Page, max),
		max:     max,
	}
}

// acquire returns an idle tab, spawning a new one while under the cap.
func (p *tabPool) acquire(ctx context.Context) (*rod.Page, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	select {
	case page := <-p.idle:
		p.mu.Unlock()
		return page, nil
	default:
	}

	if p.spawned < p.max {
		p.spawned++
		p.mu.Unlock()
		page, err := newStealthTab(p.browser)
		if err != nil {
			p.mu.Lock()
			p.spawned--
			p.mu.Unlock()
			return nil, err
		}
		return page, nil
	}
	p.mu.Unlock()

	select {
	case page := <-p.idle:
		return page, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release parks a tab for reuse, navigating it to a blank page first so no
// document (or its timers) lives on between renders.
func (p *tabPool) release(page *rod.Page) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		_ = page.Close()
		return
	}

	_ = page.Navigate("about:blank")

	select {
	case p.idle <- page:
	default:
		_ = page.Close()
	}
}

// close drains and closes every idle tab. Tabs still held by a render are
// closed by their own release call.
func (p *tabPool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.idle)
	for page := range p.idle {
		_ = page.Close()
	}
}
