package mock

import (
	"context"

	"github.com/fwojciec/speakloud"
)

var _ speakloud.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of speakloud.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*speakloud.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*speakloud.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

var _ speakloud.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of speakloud.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (string, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}

var _ speakloud.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of speakloud.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

var _ speakloud.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of speakloud.Cleaner.
type Cleaner struct {
	CleanFn func(html string) string
}

func (c *Cleaner) Clean(html string) string {
	return c.CleanFn(html)
}
