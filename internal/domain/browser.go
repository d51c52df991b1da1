package domain

import "context"

// BrowserPage is one rendered page held open for inspection.
type BrowserPage interface {
	// HTML returns the current rendered document markup.
	HTML(ctx context.Context) (string, error)
	// Attribute returns the named attribute of the first element matching
	// the CSS selector. The bool is false when no such element exists.
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	// Attributes returns the named attribute of every element matching the
	// CSS selector, in document order.
	Attributes(ctx context.Context, selector, name string) ([]string, error)
}

// BrowserEngine is a headless-browser collaborator. Two independent
// implementations back the primary and secondary resolution attempts.
type BrowserEngine interface {
	Name() string
	// Open navigates to the URL, waits for DOM readiness, and returns the
	// page plus a cleanup function that must always be called.
	Open(ctx context.Context, url string) (BrowserPage, func(), error)
}
