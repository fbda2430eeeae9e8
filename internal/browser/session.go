// Package browser wraps a headless Chrome tab behind the narrow Renderer
// contract the script-rendered source adapters consume.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer is the rendering surface an adapter needs: navigate somewhere,
// optionally click a control, and read back the rendered document.
type Renderer interface {
	// Navigate loads the URL, waits for the body to be ready, then sleeps
	// for the settle delay so client-side rendering can finish.
	Navigate(ctx context.Context, url string, settle time.Duration) error
	// Click dispatches a click on the first node matching the CSS selector.
	Click(ctx context.Context, selector string) error
	// HTML returns the rendered outer HTML of the current document.
	HTML(ctx context.Context) (string, error)
}

// Handle is a Renderer the holder must release when the run is done.
type Handle interface {
	Renderer
	Close()
}

// Factory acquires a rendering session. The orchestrator treats an
// acquisition error as fatal to the whole aggregation.
type Factory func(ctx context.Context) (Handle, error)

// Session is one shared browsing context: a dedicated headless Chrome
// process with a single tab, acquired once per aggregation run and
// released via Close.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession launches a headless browser and opens one tab. The returned
// session must be closed by the caller on every path.
func NewSession(ctx context.Context) (Handle, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so a broken environment
	// fails acquisition instead of the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Session{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{tabCancel, allocCancel},
	}, nil
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Navigate implements Renderer.
func (s *Session) Navigate(ctx context.Context, url string, settle time.Duration) error {
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if settle > 0 {
		actions = append(actions, chromedp.Sleep(settle))
	}
	if err := s.run(ctx, actions...); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Click implements Renderer.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("clicking %q: %w", selector, err)
	}
	return nil
}

// HTML implements Renderer.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var out string
	if err := s.run(ctx, chromedp.OuterHTML("html", &out, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading rendered document: %w", err)
	}
	return out, nil
}

// opTimeout bounds each rendered-page operation. A page that never
// settles fails that one operation instead of wedging the session, the
// same way the static adapter's HTTP client bounds its fetch.
const opTimeout = 30 * time.Second

// run executes actions on the session tab, bounded by the per-operation
// timeout and the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	return runBounded(ctx, s.ctx, opTimeout, func(opCtx context.Context) error {
		return chromedp.Run(opCtx, actions...)
	})
}

// runBounded runs op on a context derived from the session context so
// the tab survives the call, while a deadline and the caller's context
// both cancel the operation itself. Canceling the derived context stops
// an abandoned action rather than leaving it racing the next one.
func runBounded(ctx, sessionCtx context.Context, timeout time.Duration, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(sessionCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := op(opCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
