// Package readability implements the structural extraction strategy with
// github.com/go-shiori/go-readability. It is the only strategy that keeps
// heading, list and quote structure.
package readability

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/goquery"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements speakloud.Extractor at compile time.
var _ speakloud.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract the main content of a page.
type Extractor struct {
	name string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithName overrides the strategy name reported by the extractor. The
// browser strategy reuses this extractor under its own name.
func WithName(name string) Option {
	return func(e *Extractor) {
		e.name = name
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{name: speakloud.StrategyReadability}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the strategy identifier.
func (e *Extractor) Name() string {
	return e.name
}

// Extract processes cleaned HTML and returns typed content blocks.
func (e *Extractor) Extract(_ context.Context, page *speakloud.Page) speakloud.Outcome {
	if strings.TrimSpace(page.HTML) == "" {
		return speakloud.Decline("empty HTML input")
	}

	pageURL, _ := url.Parse(page.URL)
	article, err := readability.FromReader(strings.NewReader(page.HTML), pageURL)
	if err != nil {
		return speakloud.Decline("readability: %v", err)
	}

	blocks, err := goquery.BlocksFromHTML(article.Content)
	if err != nil || len(blocks) == 0 {
		blocks = speakloud.ParagraphBlocks(article.TextContent)
	}
	if len(blocks) == 0 {
		return speakloud.Decline("no content found")
	}

	c := &speakloud.Candidate{
		Source: e.name,
		Text:   speakloud.JoinBlocks(blocks),
		Blocks: blocks,
		Title:  strings.TrimSpace(article.Title),
		Author: strings.TrimSpace(article.Byline),
	}
	if article.PublishedTime != nil {
		c.PublishDate = article.PublishedTime.Format(speakloud.DateLayout)
	}
	return speakloud.Accept(c)
}
