package renderer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Renderer drives a single page through navigation and readiness waits and
// captures the final DOM snapshot. Timeouts are two-tiered: navigation and
// base readiness are fatal, the deferred content wait is best-effort.
type Renderer struct {
	page   playwright.Page
	opts   Options
	logger *slog.Logger
}

type Options struct {
	NavigationTimeout time.Duration
	BaseReadyTimeout  time.Duration
	DeferredTimeout   time.Duration
	SettleDelay       time.Duration
}

func DefaultOptions() Options {
	return Options{
		NavigationTimeout: 60 * time.Second,
		BaseReadyTimeout:  10 * time.Second,
		DeferredTimeout:   8 * time.Second,
		SettleDelay:       1500 * time.Millisecond,
	}
}

func New(page playwright.Page, opts Options) *Renderer {
	if opts.NavigationTimeout <= 0 {
		opts = DefaultOptions()
	}
	return &Renderer{
		page:   page,
		opts:   opts,
		logger: slog.Default().With("component", "renderer"),
	}
}

// Navigate loads the target URL. A timeout here aborts the whole request.
func (r *Renderer) Navigate(url string) error {
	_, err := r.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(r.opts.NavigationTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForBaseReady blocks until the document body is attached. Without a body
// there is nothing to extract, so this wait is fatal too.
func (r *Renderer) WaitForBaseReady() error {
	_, err := r.page.WaitForSelector("body", playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(r.opts.BaseReadyTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("document body never appeared: %w", err)
	}
	return nil
}

// WaitForDeferredSection scrolls the anchor into view and waits for a lazily
// rendered region to attach. The region is enhancement data; on timeout a
// warning is logged and false returned, never an error.
func (r *Renderer) WaitForDeferredSection(sectionSelector, scrollAnchor string) bool {
	if scrollAnchor != "" {
		if err := r.page.Locator(scrollAnchor).ScrollIntoViewIfNeeded(); err != nil {
			r.logger.Debug("could not scroll to anchor", "anchor", scrollAnchor, "error", err)
		}
	}

	_, err := r.page.WaitForSelector(sectionSelector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(r.opts.DeferredTimeout.Milliseconds())),
	})
	if err != nil {
		r.logger.Warn("deferred section did not appear, continuing without it",
			"selector", sectionSelector, "error", err)
		return false
	}
	return true
}

// Settle pauses briefly so late DOM mutations triggered by the deferred
// section can finish. This is a heuristic, not a correctness guarantee.
// TODO: replace the fixed sleep with a mutation-quiescence poll.
func (r *Renderer) Settle() {
	time.Sleep(r.opts.SettleDelay)
}

// Content returns the serialized HTML snapshot. From this point on extraction
// is a pure offline operation, decoupled from the live browser.
func (r *Renderer) Content() (string, error) {
	html, err := r.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to capture page content: %w", err)
	}
	return html, nil
}
