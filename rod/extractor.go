package rod

import (
	"context"

	"github.com/fwojciec/speakloud"
)

// Ensure Extractor implements speakloud.Extractor at compile time.
var _ speakloud.Extractor = (*Extractor)(nil)

// Extractor is the browser-rendered strategy: it renders the page, cleans
// the rendered DOM and hands it to a structural extractor.
type Extractor struct {
	renderer   speakloud.Renderer
	cleaner    speakloud.Cleaner
	structural speakloud.Extractor
}

// NewExtractor creates a browser-rendered Extractor.
func NewExtractor(renderer speakloud.Renderer, cleaner speakloud.Cleaner, structural speakloud.Extractor) *Extractor {
	return &Extractor{
		renderer:   renderer,
		cleaner:    cleaner,
		structural: structural,
	}
}

// Name returns the strategy identifier.
func (e *Extractor) Name() string {
	return speakloud.StrategyBrowser
}

// Extract renders page.URL and extracts the rendered content. The page's
// fetched HTML is ignored.
func (e *Extractor) Extract(ctx context.Context, page *speakloud.Page) speakloud.Outcome {
	html, err := e.renderer.Render(ctx, page.URL)
	if err != nil {
		return speakloud.Decline("render failed: %v", err)
	}

	out := e.structural.Extract(ctx, &speakloud.Page{URL: page.URL, HTML: e.cleaner.Clean(html)})
	if !out.OK() {
		return out
	}
	out.Candidate.Source = e.Name()
	return out
}
