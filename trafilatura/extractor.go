// Package trafilatura implements the content-density extraction strategy
// with github.com/markusmobius/go-trafilatura.
package trafilatura

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/speakloud"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements speakloud.Extractor at compile time.
var _ speakloud.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract the main text of a page.
// Trafilatura yields flat text, so blocks are a plain paragraph sequence.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Name returns the strategy identifier.
func (e *Extractor) Name() string {
	return speakloud.StrategyTrafilatura
}

// Extract processes cleaned HTML and returns the main content.
func (e *Extractor) Extract(_ context.Context, page *speakloud.Page) speakloud.Outcome {
	if strings.TrimSpace(page.HTML) == "" {
		return speakloud.Decline("empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(page.URL); err == nil {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(page.HTML), opts)
	if err != nil {
		return speakloud.Decline("trafilatura: %v", err)
	}

	blocks := speakloud.ParagraphBlocks(result.ContentText)
	if len(blocks) == 0 {
		return speakloud.Decline("no content found")
	}

	c := &speakloud.Candidate{
		Source: e.Name(),
		Text:   speakloud.JoinBlocks(blocks),
		Blocks: blocks,
		Title:  strings.TrimSpace(result.Metadata.Title),
		Author: strings.TrimSpace(result.Metadata.Author),
	}
	if !result.Metadata.Date.IsZero() {
		c.PublishDate = result.Metadata.Date.Format(speakloud.DateLayout)
	}
	return speakloud.Accept(c)
}
