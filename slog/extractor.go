package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/speakloud"
)

// Ensure LoggingExtractor implements speakloud.Extractor.
var _ speakloud.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a single strategy with debug logging.
type LoggingExtractor struct {
	next   speakloud.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next speakloud.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Name returns the wrapped strategy's name.
func (e *LoggingExtractor) Name() string {
	return e.next.Name()
}

// Extract delegates to the wrapped strategy and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, page *speakloud.Page) (out speakloud.Outcome) {
	defer func(begin time.Time) {
		chars := 0
		if out.Candidate != nil {
			chars = len([]rune(out.Candidate.Text))
		}
		e.logger.Debug("strategy",
			"strategy", e.next.Name(),
			"url", page.URL,
			"ok", out.OK(),
			"chars", chars,
			"reason", out.Reason,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return e.next.Extract(ctx, page)
}

// WrapExtractors wraps each strategy in a LoggingExtractor.
func WrapExtractors(extractors []speakloud.Extractor, logger *slog.Logger) []speakloud.Extractor {
	out := make([]speakloud.Extractor, len(extractors))
	for i, e := range extractors {
		out[i] = NewLoggingExtractor(e, logger)
	}
	return out
}

// Ensure LoggingArticleExtractor implements speakloud.ArticleExtractor.
var _ speakloud.ArticleExtractor = (*LoggingArticleExtractor)(nil)

// LoggingArticleExtractor wraps the extraction pipeline with logging.
type LoggingArticleExtractor struct {
	next   speakloud.ArticleExtractor
	logger *slog.Logger
}

// NewLoggingArticleExtractor creates a new LoggingArticleExtractor.
func NewLoggingArticleExtractor(next speakloud.ArticleExtractor, logger *slog.Logger) *LoggingArticleExtractor {
	return &LoggingArticleExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped pipeline and logs the result.
func (e *LoggingArticleExtractor) Extract(ctx context.Context, req speakloud.ExtractionRequest) (res *speakloud.ExtractionResult, err error) {
	defer func(begin time.Time) {
		var source string
		var words int
		if res != nil {
			source, words = res.Source, res.WordCount
		}
		e.logger.Info("extract",
			"item_id", req.ItemID,
			"url", req.URL,
			"source", source,
			"words", words,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, req)
}
