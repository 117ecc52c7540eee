package extract

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/speakloud"
)

// DefaultRuleTTL is how long a loaded rule list is served before refresh.
const DefaultRuleTTL = 300 * time.Second

// RuleMatcher finds the extraction rule that applies to a URL.
type RuleMatcher interface {
	Match(ctx context.Context, url string) *speakloud.Rule
}

var _ RuleMatcher = (*RuleCache)(nil)

// RuleCache serves extraction rules from memory and reloads them from the
// store once the TTL has passed. A failed reload keeps serving the previous
// list. Concurrent callers may trigger duplicate reloads, which is harmless
// because reloading is idempotent.
type RuleCache struct {
	store  speakloud.RuleLister
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu          sync.Mutex
	rules       []*speakloud.Rule
	refreshedAt time.Time
	loaded      bool
}

// CacheOption configures a RuleCache.
type CacheOption func(*RuleCache)

// WithTTL sets the cache lifetime. Defaults to DefaultRuleTTL.
func WithTTL(d time.Duration) CacheOption {
	return func(c *RuleCache) {
		c.ttl = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *RuleCache) {
		c.now = now
	}
}

// WithCacheLogger sets the logger used to report reload failures.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *RuleCache) {
		c.logger = logger
	}
}

// NewRuleCache creates a RuleCache backed by store. Nothing is loaded until
// the first call to Rules.
func NewRuleCache(store speakloud.RuleLister, opts ...CacheOption) *RuleCache {
	c := &RuleCache{
		store:  store,
		ttl:    DefaultRuleTTL,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the cached rule list, reloading it when expired.
func (c *RuleCache) Rules(ctx context.Context) []*speakloud.Rule {
	c.mu.Lock()
	if c.loaded && c.now().Sub(c.refreshedAt) < c.ttl {
		rules := c.rules
		c.mu.Unlock()
		return rules
	}
	c.mu.Unlock()

	rules, err := c.store.ListRules(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("rule refresh failed", "err", err, "stale", c.loaded)
		if c.loaded {
			// Retry after another TTL rather than on every request.
			c.refreshedAt = c.now()
		}
		return c.rules
	}
	c.rules = rules
	c.refreshedAt = c.now()
	c.loaded = true
	return rules
}

// Match returns the rule that applies to url, or nil.
func (c *RuleCache) Match(ctx context.Context, url string) *speakloud.Rule {
	return speakloud.MatchRule(c.Rules(ctx), url)
}

// Invalidate forces a reload on the next call.
func (c *RuleCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}
