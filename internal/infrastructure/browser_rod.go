package infrastructure

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// RodEngine is the secondary headless engine, backed by go-rod. It exists as
// an independent fallback when the primary engine cannot render a page.
type RodEngine struct {
	logger *zap.Logger
}

// NewRodEngine creates the rod-backed browser engine.
func NewRodEngine(logger *zap.Logger) *RodEngine {
	return &RodEngine{logger: logger}
}

// Name returns the engine identifier.
func (e *RodEngine) Name() string {
	return "rod"
}

// Open launches a browser, navigates, and waits for the load event.
func (e *RodEngine) Open(ctx context.Context, url string) (domain.BrowserPage, func(), error) {
	launch := launcher.New().Headless(true).NoSandbox(true)
	controlURL, err := launch.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		launch.Cleanup()
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	cleanup := func() {
		browser.Close()
		launch.Cleanup()
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("page load failed: %w", err)
	}

	return &rodPage{page: page}, cleanup, nil
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page markup: %w", err)
	}
	return html, nil
}

func (p *rodPage) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	page := p.page.Context(ctx)
	exists, el, err := page.Has(selector)
	if err != nil {
		return "", false, err
	}
	if !exists {
		return "", false, nil
	}

	attr, err := el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if attr == nil {
		return "", true, nil
	}
	return *attr, true, nil
}

func (p *rodPage) Attributes(ctx context.Context, selector, name string) ([]string, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, el := range els {
		attr, err := el.Attribute(name)
		if err != nil || attr == nil {
			continue
		}
		values = append(values, *attr)
	}
	return values, nil
}
