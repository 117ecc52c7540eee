package speakloud

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// PatternType says how a rule's pattern is matched against a request URL.
type PatternType string

// Supported pattern types.
const (
	PatternDomain    PatternType = "domain"
	PatternURLPrefix PatternType = "url_prefix"
)

// Rule is an operator-curated override forcing a specific extraction
// strategy for a domain or URL prefix.
type Rule struct {
	ID                 string      `json:"id"`
	Pattern            string      `json:"pattern"`
	PatternType        PatternType `json:"pattern_type"`
	PreferredExtractor string      `json:"preferred_extractor"`
	Description        string      `json:"description"`
	CreatedAt          time.Time   `json:"created_at"`
	CreatedBy          string      `json:"created_by"`
}

// Validate returns an error if the rule contains invalid fields.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return Errorf(EINVALID, "rule pattern required")
	}
	switch r.PatternType {
	case PatternDomain, PatternURLPrefix:
	default:
		return Errorf(EINVALID, "invalid rule pattern type %q", r.PatternType)
	}
	if strings.TrimSpace(r.PreferredExtractor) == "" {
		return Errorf(EINVALID, "rule preferred extractor required")
	}
	return nil
}

// RuleService represents a service for managing extraction rules.
type RuleService interface {
	// CreateRule creates a new rule.
	CreateRule(ctx context.Context, rule *Rule) error

	// FindRuleByID retrieves a rule by ID.
	// Returns ENOTFOUND if rule does not exist.
	FindRuleByID(ctx context.Context, id string) (*Rule, error)

	// ListRules returns all rules ordered by creation time.
	ListRules(ctx context.Context) ([]*Rule, error)

	// DeleteRule permanently removes a rule.
	// Returns ENOTFOUND if rule does not exist.
	DeleteRule(ctx context.Context, id string) error
}

// RuleLister is the read-only view of the rule store used by extraction.
type RuleLister interface {
	ListRules(ctx context.Context) ([]*Rule, error)
}

// MatchRule returns the single rule that applies to rawURL, or nil.
// Domain rules take precedence over URL-prefix rules. Among domain rules the
// most specific domain wins; among prefix rules the longest prefix wins.
// Ties go to the rule listed first.
func MatchRule(rules []*Rule, rawURL string) *Rule {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := NormalizeHost(u.Hostname())

	var domainMatch, prefixMatch *Rule
	for _, r := range rules {
		if r == nil {
			continue
		}
		switch r.PatternType {
		case PatternDomain:
			pattern := NormalizeHost(r.Pattern)
			if pattern == "" || !HostMatches(host, pattern) {
				continue
			}
			if domainMatch == nil || len(pattern) > len(NormalizeHost(domainMatch.Pattern)) {
				domainMatch = r
			}
		case PatternURLPrefix:
			if r.Pattern == "" || !strings.HasPrefix(rawURL, r.Pattern) {
				continue
			}
			if prefixMatch == nil || len(r.Pattern) > len(prefixMatch.Pattern) {
				prefixMatch = r
			}
		}
	}

	if domainMatch != nil {
		return domainMatch
	}
	return prefixMatch
}

// NormalizeHost lowercases a host and strips a leading "www." and any port.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

// HostMatches reports whether host equals domain or is a subdomain of it.
// Both arguments must already be normalized.
func HostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
