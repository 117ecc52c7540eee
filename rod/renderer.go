package rod

import (
	"context"
	neturl "net/url"
	"sync"
	"time"

	"github.com/fwojciec/speakloud"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRenderTimeout bounds one page render.
const DefaultRenderTimeout = 30 * time.Second

// DefaultStableWait is how long the DOM must stay unchanged before the page
// counts as rendered.
const DefaultStableWait = time.Second

// Ensure Renderer implements speakloud.Renderer at compile time.
var _ speakloud.Renderer = (*Renderer)(nil)

// Renderer retrieves rendered HTML with headless Chrome. The browser is
// launched on the first Render call, so a pipeline that never falls back to
// the browser strategy never starts Chrome.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	timeout    time.Duration
	stableWait time.Duration
	userAgent  string
	limiter    speakloud.DomainLimiter
	opts       []ManagerOption

	mu      sync.Mutex
	manager *BrowserManager
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRenderTimeout sets the per-page render timeout.
func WithRenderTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithUserAgent overrides the browser's User-Agent.
func WithUserAgent(ua string) RendererOption {
	return func(r *Renderer) {
		r.userAgent = ua
	}
}

// WithLimiter makes every render wait for the host's turn, the same way
// page fetches do.
func WithLimiter(l speakloud.DomainLimiter) RendererOption {
	return func(r *Renderer) {
		r.limiter = l
	}
}

// WithManagerOptions passes options to the BrowserManager launched on first use.
func WithManagerOptions(opts ...ManagerOption) RendererOption {
	return func(r *Renderer) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRenderer creates a Renderer. It does not launch Chrome.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		timeout:    DefaultRenderTimeout,
		stableWait: DefaultStableWait,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render navigates to url, waits for the page to load and settle, and
// returns the rendered HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.limiter != nil {
		u, err := neturl.Parse(url)
		if err != nil {
			return "", err
		}
		if err := r.limiter.Wait(ctx, u.Hostname()); err != nil {
			return "", err
		}
	}

	manager, err := r.browserManager()
	if err != nil {
		return "", err
	}

	page, err := manager.Page()
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(r.timeout)

	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			return "", err
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	// Pages that never settle are rendered as they are.
	_ = page.WaitStable(r.stableWait)

	return page.HTML()
}

// Close releases browser resources.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manager == nil {
		return nil
	}
	err := r.manager.Close()
	r.manager = nil
	return err
}

func (r *Renderer) browserManager() (*BrowserManager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manager != nil {
		return r.manager, nil
	}
	m, err := NewBrowserManager(r.opts...)
	if err != nil {
		return nil, speakloud.Errorf(speakloud.EEXTRACT, "browser unavailable: %v", err)
	}
	r.manager = m
	return m, nil
}
