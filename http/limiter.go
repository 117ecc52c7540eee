package http

import (
	"context"
	"sync"

	"github.com/fwojciec/speakloud"
	"golang.org/x/time/rate"
)

var _ speakloud.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out requests to the same site. Hosts are keyed by
// their normalized name, so www.example.com and example.com share a bucket.
// The page fetch and the browser render of one article are two requests to
// the same host and both wait here.
//
// A rate of zero or less disables limiting.
type DomainLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst allows n requests to a host before spacing applies.
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		if n > 0 {
			d.burst = n
		}
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limit: rate.Limit(rps),
		burst: 1,
		hosts: make(map[string]*rate.Limiter),
	}
	if rps <= 0 {
		d.limit = rate.Inf
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until a request to host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	if d.limit == rate.Inf {
		return ctx.Err()
	}
	return d.forHost(speakloud.NormalizeHost(host)).Wait(ctx)
}

func (d *DomainLimiter) forHost(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.hosts[host]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.hosts[host] = l
	}
	return l
}
