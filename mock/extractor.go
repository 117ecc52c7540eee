package mock

import (
	"context"

	"github.com/fwojciec/speakloud"
)

var _ speakloud.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of speakloud.Extractor.
type Extractor struct {
	NameFn    func() string
	ExtractFn func(ctx context.Context, page *speakloud.Page) speakloud.Outcome
}

func (e *Extractor) Name() string {
	return e.NameFn()
}

func (e *Extractor) Extract(ctx context.Context, page *speakloud.Page) speakloud.Outcome {
	return e.ExtractFn(ctx, page)
}

var _ speakloud.MetadataResolver = (*MetadataResolver)(nil)

// MetadataResolver is a mock implementation of speakloud.MetadataResolver.
type MetadataResolver struct {
	ResolveFn func(html, pageURL string, winner *speakloud.Candidate) speakloud.Metadata
}

func (r *MetadataResolver) Resolve(html, pageURL string, winner *speakloud.Candidate) speakloud.Metadata {
	return r.ResolveFn(html, pageURL, winner)
}

var _ speakloud.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of speakloud.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(blocks []speakloud.Block) (string, []speakloud.Block)
}

func (s *Sanitizer) Sanitize(blocks []speakloud.Block) (string, []speakloud.Block) {
	return s.SanitizeFn(blocks)
}

var _ speakloud.ArticleExtractor = (*ArticleExtractor)(nil)

// ArticleExtractor is a mock implementation of speakloud.ArticleExtractor.
type ArticleExtractor struct {
	ExtractFn func(ctx context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error)
}

func (e *ArticleExtractor) Extract(ctx context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
	return e.ExtractFn(ctx, req)
}
