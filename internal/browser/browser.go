package browser

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// blockedResourceTypes lists request resource types aborted at the network
// layer. Extraction works on markup and text only, so rendered assets are
// wasted bandwidth.
var blockedResourceTypes = map[string]struct{}{
	"image":      {},
	"stylesheet": {},
	"font":       {},
	"media":      {},
}

// Session owns one headless browser process. It is acquired per request and
// must be released on every exit path; the underlying resource is an OS
// subprocess, not garbage-collected memory.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

type Options struct {
	Headless       bool
	ExecutablePath string
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	Locale         string
	TimezoneID     string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        60 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1366,
		ViewportHeight: 768,
		AcceptLanguage: "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
		Locale:         "id-ID",
		TimezoneID:     "Asia/Jakarta",
	}
}

// New launches a browser process and prepares a context with the configured
// identity headers. On any launch failure the partially acquired resources are
// torn down before the error is returned, so a failed New never leaves an
// orphaned process behind.
func New(opts *Options) (*Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
		},
	}

	// Constrained environments (serverless, slim containers) ship their own
	// trimmed browser binary and point at it via config.
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	ctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(opts.UserAgent),
		Locale:     playwright.String(opts.Locale),
		TimezoneId: playwright.String(opts.TimezoneID),
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": opts.AcceptLanguage,
		},
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	s := &Session{
		pw:      pw,
		browser: b,
		context: ctx,
		logger:  slog.Default().With("component", "browser"),
	}

	if opts.Timeout > 0 {
		ctx.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	return s, nil
}

// NewPage opens a page with request interception installed: requests for
// blocked resource types are aborted before they leave the process.
func (s *Session) NewPage() (playwright.Page, error) {
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	err = page.Route("**/*", func(route playwright.Route) {
		if _, blocked := blockedResourceTypes[route.Request().ResourceType()]; blocked {
			if err := route.Abort(); err != nil {
				s.logger.Debug("failed to abort request", "url", route.Request().URL(), "error", err)
			}
			return
		}
		if err := route.Continue(); err != nil {
			s.logger.Debug("failed to continue request", "url", route.Request().URL(), "error", err)
		}
	})
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to install request interception: %w", err)
	}

	return page, nil
}

// Close releases the browser process. It is idempotent: releasing an already
// released session is a no-op, so cleanup paths may overlap without
// double-close errors. Close order is context, browser, driver.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error

	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}
