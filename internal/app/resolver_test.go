package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

type fakePage struct {
	html       string
	attrs      map[string]string
	attrLists  map[string][]string
	htmlErr    error
	openedHTML bool
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	p.openedHTML = true
	return p.html, p.htmlErr
}

func (p *fakePage) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	val, ok := p.attrs[selector+"/"+name]
	return val, ok, nil
}

func (p *fakePage) Attributes(ctx context.Context, selector, name string) ([]string, error) {
	return p.attrLists[selector+"/"+name], nil
}

type fakeBrowser struct {
	name    string
	page    *fakePage
	openErr error
	delay   time.Duration
	opened  bool
}

func (b *fakeBrowser) Name() string { return b.name }

func (b *fakeBrowser) Open(ctx context.Context, url string) (domain.BrowserPage, func(), error) {
	b.opened = true
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	if b.openErr != nil {
		return nil, nil, b.openErr
	}
	return b.page, func() {}, nil
}

func testResolver(primary, secondary domain.BrowserEngine, budget time.Duration) *StreamResolver {
	return NewStreamResolver(primary, secondary, &domain.ResolverConfig{
		Budget:       budget,
		ProbeTimeout: 100 * time.Millisecond,
	}, zap.NewNop())
}

func TestResolve_PrimaryFindsURLInMarkup(t *testing.T) {
	primary := &fakeBrowser{name: "primary", page: &fakePage{
		html: `<html><script>var src = "https://cdn.example.com/main.m3u8?token=1";</script></html>`,
	}}
	secondary := &fakeBrowser{name: "secondary"}

	res := testResolver(primary, secondary, time.Second).Resolve(context.Background(), "https://example.com/watch")

	assert.True(t, res.Resolved())
	assert.Equal(t, domain.StrategyHeadlessPrimary, res.Strategy)
	assert.Equal(t, "https://cdn.example.com/main.m3u8?token=1", res.URL)
	assert.False(t, secondary.opened, "secondary must not run when primary resolves")
}

func TestResolve_VideoSrcProbe(t *testing.T) {
	primary := &fakeBrowser{name: "primary", page: &fakePage{
		html:  `<html><video></video></html>`,
		attrs: map[string]string{"video/src": "https://cdn.example.com/direct/stream"},
	}}
	secondary := &fakeBrowser{name: "secondary"}

	res := testResolver(primary, secondary, time.Second).Resolve(context.Background(), "https://example.com/watch")

	assert.Equal(t, "https://cdn.example.com/direct/stream", res.URL)
	assert.Equal(t, domain.StrategyHeadlessPrimary, res.Strategy)
}

func TestResolve_BlobSrcIsSkipped(t *testing.T) {
	primary := &fakeBrowser{name: "primary", page: &fakePage{
		html:  `<html><video></video></html>`,
		attrs: map[string]string{"video/src": "blob:https://example.com/abc-123"},
	}}
	secondary := &fakeBrowser{name: "secondary", page: &fakePage{html: `<html></html>`}}

	res := testResolver(primary, secondary, time.Second).Resolve(context.Background(), "https://example.com/watch")

	assert.False(t, res.Resolved())
	assert.Equal(t, domain.StrategyNone, res.Strategy)
}

func TestResolve_FallsBackToSecondary(t *testing.T) {
	primary := &fakeBrowser{name: "primary", openErr: errors.New("browser crashed")}
	secondary := &fakeBrowser{name: "secondary", page: &fakePage{
		html: `<html><a href="https://cdn.example.com/file.mp4">link</a></html>`,
	}}

	res := testResolver(primary, secondary, time.Second).Resolve(context.Background(), "https://example.com/watch")

	assert.True(t, res.Resolved())
	assert.Equal(t, domain.StrategyHeadlessSecondary, res.Strategy)
	assert.Equal(t, "https://cdn.example.com/file.mp4", res.URL)
}

func TestResolve_BudgetExceededIsSoftFailure(t *testing.T) {
	primary := &fakeBrowser{name: "primary", delay: time.Second, page: &fakePage{html: "<html></html>"}}
	secondary := &fakeBrowser{name: "secondary", page: &fakePage{html: "<html></html>"}}

	start := time.Now()
	res := testResolver(primary, secondary, 50*time.Millisecond).Resolve(context.Background(), "https://example.com/watch")

	assert.False(t, res.Resolved())
	assert.Equal(t, domain.StrategyNone, res.Strategy)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPickStreamCandidate(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "skips trailer urls when an alternative exists",
			html: `"https://cdn.example.com/trailer.mp4" "https://cdn.example.com/feature.mp4"`,
			want: "https://cdn.example.com/feature.mp4",
		},
		{
			name: "trailer url returned when it is the only match",
			html: `"https://cdn.example.com/trailer.mp4"`,
			want: "https://cdn.example.com/trailer.mp4",
		},
		{
			name: "no match",
			html: `<html><body>nothing here</body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickStreamCandidate(tt.html))
		})
	}
}

func TestScanForStreamURL_PrefersM3U8(t *testing.T) {
	html := `src="https://cdn.example.com/a.mp4" src="https://cdn.example.com/b.m3u8"`
	assert.Equal(t, "https://cdn.example.com/b.m3u8", ScanForStreamURL(html))
}

func TestLooksLikeStreamEmbed(t *testing.T) {
	assert.True(t, LooksLikeStreamEmbed("https://player.example.com/embed/42"))
	assert.True(t, LooksLikeStreamEmbed("https://cdn.example.com/x.m3u8"))
	assert.True(t, LooksLikeStreamEmbed("https://cdn.example.com/stream/9"))
	assert.False(t, LooksLikeStreamEmbed("https://ads.example.com/banner"))
	assert.False(t, LooksLikeStreamEmbed(""))
}
