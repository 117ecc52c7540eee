// Package slog provides logging decorators for speakloud services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/speakloud"
)

// Ensure LoggingFetcher implements speakloud.Fetcher.
var _ speakloud.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   speakloud.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next speakloud.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *speakloud.FetchResult, err error) {
	defer func(begin time.Time) {
		var bytes, status int
		var warnings []string
		if res != nil {
			bytes, status, warnings = len(res.HTML), res.StatusCode, res.Warnings
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", bytes,
			"warnings", len(warnings),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
