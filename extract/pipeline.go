// Package extract runs the multi-strategy article extraction pipeline.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/speakloud"
)

// PreviewLength is the number of runes kept in ExtractionResult.TextPreview.
const PreviewLength = 200

var _ speakloud.ArticleExtractor = (*Pipeline)(nil)

// Pipeline fetches a page, runs extraction strategies in order, selects the
// best candidate, resolves metadata and sanitizes the result.
type Pipeline struct {
	fetcher    speakloud.Fetcher
	cleaner    speakloud.Cleaner
	resolver   speakloud.MetadataResolver
	sanitizer  speakloud.Sanitizer
	extractors []speakloud.Extractor
	byName     map[string]speakloud.Extractor

	rules      RuleMatcher
	exhaustive bool
	minLength  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRules enables rule overrides.
func WithRules(rules RuleMatcher) Option {
	return func(p *Pipeline) {
		p.rules = rules
	}
}

// WithExhaustive runs every strategy except browser instead of stopping at
// the first validated candidate. Browser rendering still only runs when
// nothing else validated.
func WithExhaustive() Option {
	return func(p *Pipeline) {
		p.exhaustive = true
	}
}

// WithMinLength sets the minimum text length in runes. Defaults to
// speakloud.DefaultMinTextLength.
func WithMinLength(n int) Option {
	return func(p *Pipeline) {
		p.minLength = n
	}
}

// WithLogger sets the logger for per-strategy diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a Pipeline. Extractors run in the order given.
func NewPipeline(
	fetcher speakloud.Fetcher,
	cleaner speakloud.Cleaner,
	resolver speakloud.MetadataResolver,
	sanitizer speakloud.Sanitizer,
	extractors []speakloud.Extractor,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		cleaner:    cleaner,
		resolver:   resolver,
		sanitizer:  sanitizer,
		extractors: extractors,
		byName:     make(map[string]speakloud.Extractor, len(extractors)),
		minLength:  speakloud.DefaultMinTextLength,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, e := range extractors {
		p.byName[e.Name()] = e
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract runs the pipeline for req. The returned result is never nil; on
// failure it carries the diagnostics gathered so far and the error is
// EFETCH or EEXTRACT.
func (p *Pipeline) Extract(ctx context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
	result := &speakloud.ExtractionResult{
		URL:           req.URL,
		ExtractStatus: make(map[string]speakloud.Status),
		Diagnostics:   make(map[string]string),
	}
	logger := p.logger.With("item_id", req.ItemID, "url", req.URL)

	fetched, err := p.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		result.ExtractStatus[speakloud.StageFetch] = speakloud.StatusFailed
		result.Diagnostics[speakloud.StageFetch] = err.Error()
		result.Error = speakloud.ErrFetchFailed
		if speakloud.ErrorCode(err) == speakloud.EFETCH {
			return result, err
		}
		return result, speakloud.Errorf(speakloud.EFETCH, "fetch %s: %v", req.URL, err)
	}
	result.ExtractStatus[speakloud.StageFetch] = speakloud.StatusSuccess
	if len(fetched.Warnings) > 0 {
		result.Diagnostics[speakloud.StageFetch] = strings.Join(fetched.Warnings, "; ")
	}
	result.LastModified = fetched.LastModified
	result.ETag = fetched.ETag

	pageURL := req.URL
	if fetched.CanonicalURL != "" {
		pageURL = fetched.CanonicalURL
	}
	page := &speakloud.Page{URL: pageURL, HTML: p.cleaner.Clean(fetched.HTML)}

	plan := p.plan(ctx, req.URL, result)

	var candidates []*speakloud.Candidate
	for _, e := range plan {
		if err := ctx.Err(); err != nil {
			result.Error = speakloud.ErrCancelled
			result.Diagnostics[speakloud.StageExtract] = err.Error()
			return result, speakloud.Errorf(speakloud.EEXTRACT, "extraction cancelled: %v", err)
		}
		name := e.Name()
		if name == speakloud.StrategyBrowser && len(candidates) > 0 {
			break
		}

		candidate, reason := p.attempt(ctx, e, page)
		if candidate == nil {
			result.ExtractStatus[name] = speakloud.StatusFailed
			result.Diagnostics[name] = reason
			logger.Debug("strategy failed", "strategy", name, "reason", reason)
			continue
		}
		result.ExtractStatus[name] = speakloud.StatusSuccess
		candidates = append(candidates, candidate)
		if !p.exhaustive {
			break
		}
	}

	winner := speakloud.SelectBest(candidates)
	if winner == nil {
		result.Error = speakloud.ErrAllExtractorsFailed
		return result, speakloud.Errorf(speakloud.EEXTRACT, "all extractors failed for %s", req.URL)
	}
	result.Source = winner.Source

	// Metadata comes from the raw document; cleaning strips JSON-LD.
	result.Metadata = p.resolver.Resolve(fetched.HTML, pageURL, winner)

	blocks := winner.Blocks
	if len(blocks) == 0 {
		blocks = speakloud.ParagraphBlocks(winner.Text)
	}
	text, kept := p.sanitizer.Sanitize(blocks)
	if strings.TrimSpace(text) == "" {
		result.Error = speakloud.ErrEmptyContent
		return result, speakloud.Errorf(speakloud.EEXTRACT, "no content left after sanitization for %s", req.URL)
	}

	result.Text = text
	result.Blocks = kept
	result.WordCount = speakloud.CountWords(text)
	result.ReadingTimeMin = speakloud.ReadingTime(result.WordCount)
	result.TextPreview = speakloud.Preview(text, PreviewLength)
	result.ContentHash = fmt.Sprintf("%016x", xxhash.Sum64String(text))

	logger.Info("extracted",
		"source", result.Source,
		"words", result.WordCount,
		"rule", result.UsedRuleID,
	)
	return result, nil
}

// plan returns the strategies to attempt, recording rule decisions in result.
func (p *Pipeline) plan(ctx context.Context, rawURL string, result *speakloud.ExtractionResult) []speakloud.Extractor {
	if p.rules == nil {
		return p.extractors
	}
	rule := p.rules.Match(ctx, rawURL)
	if rule == nil {
		return p.extractors
	}

	name := speakloud.CanonicalStrategy(rule.PreferredExtractor)
	preferred, ok := p.byName[name]
	if !ok {
		result.ExtractStatus[name] = speakloud.StatusUnknown
		result.Diagnostics[name] = fmt.Sprintf("rule %s names unknown extractor %q", rule.ID, rule.PreferredExtractor)
		return p.extractors
	}

	result.UsedRuleID = rule.ID
	for _, e := range p.extractors {
		if e.Name() != name {
			result.ExtractStatus[e.Name()] = speakloud.StatusSkipped
		}
	}
	return []speakloud.Extractor{preferred}
}

// attempt runs one strategy and validates its output. A panic inside the
// strategy counts as a failure.
func (p *Pipeline) attempt(ctx context.Context, e speakloud.Extractor, page *speakloud.Page) (candidate *speakloud.Candidate, reason string) {
	defer func() {
		if r := recover(); r != nil {
			candidate, reason = nil, fmt.Sprintf("panic: %v", r)
		}
	}()

	outcome := e.Extract(ctx, page)
	if !outcome.OK() {
		if outcome.Reason == "" {
			return nil, "no content"
		}
		return nil, outcome.Reason
	}

	text, err := speakloud.ValidateText(outcome.Candidate.Text, p.minLength)
	if err != nil {
		return nil, speakloud.ErrorMessage(err)
	}
	c := *outcome.Candidate
	c.Text = text
	if c.Source == "" {
		c.Source = e.Name()
	}
	return &c, ""
}
