package speakloud

import (
	"context"
	"fmt"
	"strings"
)

// Strategy names. They appear in extraction rules, in ExtractStatus keys,
// and as ExtractionResult.Source.
const (
	StrategyTrafilatura = "trafilatura"
	StrategyDistiller   = "distiller"
	StrategyReadability = "readability"
	StrategyDomain      = "domain"
	StrategyBrowser     = "browser"
)

// DefaultStrategyOrder lists strategies from cheapest to most expensive.
var DefaultStrategyOrder = []string{
	StrategyTrafilatura,
	StrategyDistiller,
	StrategyReadability,
	StrategyDomain,
	StrategyBrowser,
}

// strategyAliases maps legacy rule values to strategy names.
var strategyAliases = map[string]string{
	"newspaper":   StrategyDistiller,
	"newspaper3k": StrategyDistiller,
	"playwright":  StrategyBrowser,
	"rendered":    StrategyBrowser,
}

// CanonicalStrategy normalizes a strategy name as stored in a rule.
// Unknown names are returned lowercased and trimmed.
func CanonicalStrategy(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := strategyAliases[name]; ok {
		return alias
	}
	return name
}

// Candidate is the output of one extraction strategy.
type Candidate struct {
	// Source is the name of the strategy that produced the candidate.
	Source string

	Text   string
	Blocks []Block

	// Optional metadata guesses made by the strategy itself.
	Title       string
	Author      string
	PublishDate string
}

// Outcome is the result of one strategy attempt: either an accepted
// candidate or a reason the strategy declined.
type Outcome struct {
	Candidate *Candidate
	Reason    string
}

// Accept returns an Outcome carrying c.
func Accept(c *Candidate) Outcome {
	return Outcome{Candidate: c}
}

// Decline returns an Outcome without a candidate.
func Decline(format string, args ...any) Outcome {
	return Outcome{Reason: fmt.Sprintf(format, args...)}
}

// OK reports whether the strategy produced a candidate.
func (o Outcome) OK() bool {
	return o.Candidate != nil
}

// Extractor is one content-extraction strategy.
type Extractor interface {
	// Name returns the strategy identifier (e.g., "trafilatura").
	Name() string

	// Extract processes a cleaned page. Failing to produce output is an
	// expected result reported as a declined Outcome, not an error.
	Extract(ctx context.Context, page *Page) Outcome
}
