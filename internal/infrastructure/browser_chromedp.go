package infrastructure

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// ChromedpEngine drives headless Chrome through the DevTools protocol. It is
// the primary headless engine for stream resolution.
type ChromedpEngine struct {
	userAgent string
	logger    *zap.Logger
}

// NewChromedpEngine creates the chromedp-backed browser engine.
func NewChromedpEngine(userAgent string, logger *zap.Logger) *ChromedpEngine {
	return &ChromedpEngine{userAgent: userAgent, logger: logger}
}

// Name returns the engine identifier.
func (e *ChromedpEngine) Name() string {
	return "chromedp"
}

// Open launches a fresh headless browser, navigates, and waits for the DOM
// to become ready. The returned cleanup tears down the whole browser.
func (e *ChromedpEngine) Open(ctx context.Context, url string) (domain.BrowserPage, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("mute-audio", true),
	)
	if e.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(e.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cleanup := func() {
		cancelBrowser()
		cancelAlloc()
	}

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("chromedp navigation failed: %w", err)
	}

	return &chromedpPage{ctx: browserCtx}, cleanup, nil
}

type chromedpPage struct {
	ctx context.Context
}

func (p *chromedpPage) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := joinContext(p.ctx, ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("failed to read page markup: %w", err)
	}
	return html, nil
}

func (p *chromedpPage) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	runCtx, cancel := joinContext(p.ctx, ctx)
	defer cancel()

	var value string
	var ok bool
	err := chromedp.Run(runCtx,
		chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery),
	)
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (p *chromedpPage) Attributes(ctx context.Context, selector, name string) ([]string, error) {
	runCtx, cancel := joinContext(p.ctx, ctx)
	defer cancel()

	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(el => el.getAttribute(%q)).filter(v => v !== null)`,
		selector, name)

	var values []string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &values)); err != nil {
		return nil, err
	}
	return values, nil
}

// joinContext derives a chromedp-compatible context that still honors the
// caller's deadline. chromedp actions must run on the browser's own context
// chain, so the caller deadline is bridged over rather than passed directly.
func joinContext(browserCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := callerCtx.Deadline(); ok {
		return context.WithDeadline(browserCtx, deadline)
	}
	return context.WithCancel(browserCtx)
}
