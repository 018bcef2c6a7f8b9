package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/adiwp/storescraper/internal/browser"
	"github.com/adiwp/storescraper/internal/renderer"
)

// Selectors driving the readiness waits. The review feed hydrates lazily once
// its anchor scrolls into view.
const (
	reviewSectionSelector = `div[data-testid="divReviewFeed"]`
	reviewScrollAnchor    = `footer`
)

// session is the slice of browser.Session the fetcher needs; narrowed so
// tests can count acquisitions and releases.
type session interface {
	NewPage() (playwright.Page, error)
	Close() error
}

// BrowserFetcher acquires one browser process per fetch and guarantees its
// release on every exit path. Requests are not serialized against each other;
// the process is the unit of isolation.
type BrowserFetcher struct {
	browserOpts  *browser.Options
	rendererOpts renderer.Options
	logger       *slog.Logger

	// acquire is swapped out in tests.
	acquire func() (session, error)
}

func NewBrowserFetcher(browserOpts *browser.Options, rendererOpts renderer.Options) *BrowserFetcher {
	return &BrowserFetcher{
		browserOpts:  browserOpts,
		rendererOpts: rendererOpts,
		logger:       slog.Default().With("component", "fetcher"),
		acquire: func() (session, error) {
			return browser.New(browserOpts)
		},
	}
}

// Fetch renders the page and captures its final HTML. Navigation and base
// readiness failures are fatal and wrap ErrRender; the deferred review region
// is best-effort and its absence only flips ReviewsLoaded.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := f.acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRender, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			f.logger.Error("failed to release browser session", "error", err)
		}
	}()

	page, err := sess.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRender, err)
	}

	r := renderer.New(page, f.rendererOpts)

	if err := r.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRender, err)
	}

	if err := r.WaitForBaseReady(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRender, err)
	}

	reviewsLoaded := r.WaitForDeferredSection(reviewSectionSelector, reviewScrollAnchor)
	if reviewsLoaded {
		r.Settle()
	}

	html, err := r.Content()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRender, err)
	}

	return &FetchResult{HTML: html, ReviewsLoaded: reviewsLoaded}, nil
}
