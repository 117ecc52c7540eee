package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/speakloud"
)

// Ensure LoggingSpeechBackend implements speakloud.SpeechBackend.
var _ speakloud.SpeechBackend = (*LoggingSpeechBackend)(nil)

// LoggingSpeechBackend wraps a SpeechBackend with debug logging per chunk.
type LoggingSpeechBackend struct {
	next   speakloud.SpeechBackend
	logger *slog.Logger
}

// NewLoggingSpeechBackend creates a new LoggingSpeechBackend.
func NewLoggingSpeechBackend(next speakloud.SpeechBackend, logger *slog.Logger) *LoggingSpeechBackend {
	return &LoggingSpeechBackend{next: next, logger: logger}
}

// Encoding delegates to the wrapped backend.
func (b *LoggingSpeechBackend) Encoding() speakloud.AudioEncoding {
	return b.next.Encoding()
}

// Synthesize delegates to the wrapped backend and logs the call.
func (b *LoggingSpeechBackend) Synthesize(ctx context.Context, req speakloud.SpeechRequest) (audio []byte, err error) {
	defer func(begin time.Time) {
		b.logger.Debug("tts chunk",
			"voice", req.Voice,
			"ssml_bytes", len(req.SSML),
			"audio_bytes", len(audio),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return b.next.Synthesize(ctx, req)
}

// Ensure LoggingSynthesizer implements speakloud.Synthesizer.
var _ speakloud.Synthesizer = (*LoggingSynthesizer)(nil)

// LoggingSynthesizer wraps a Synthesizer with logging.
type LoggingSynthesizer struct {
	next   speakloud.Synthesizer
	logger *slog.Logger
}

// NewLoggingSynthesizer creates a new LoggingSynthesizer.
func NewLoggingSynthesizer(next speakloud.Synthesizer, logger *slog.Logger) *LoggingSynthesizer {
	return &LoggingSynthesizer{next: next, logger: logger}
}

// Synthesize delegates to the wrapped synthesizer and logs the result.
func (s *LoggingSynthesizer) Synthesize(ctx context.Context, req speakloud.SynthesisRequest) (res *speakloud.SynthesisResult, err error) {
	defer func(begin time.Time) {
		var status speakloud.SynthesisStatus
		var segments int
		if res != nil {
			status, segments = res.Status, res.SegmentCount
		}
		s.logger.Info("synthesize",
			"item_id", req.ItemID,
			"status", status,
			"segments", segments,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Synthesize(ctx, req)
}
