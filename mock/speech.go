package mock

import (
	"context"

	"github.com/fwojciec/speakloud"
)

var _ speakloud.SpeechBackend = (*SpeechBackend)(nil)

// SpeechBackend is a mock implementation of speakloud.SpeechBackend.
type SpeechBackend struct {
	SynthesizeFn func(ctx context.Context, req speakloud.SpeechRequest) ([]byte, error)
	EncodingFn   func() speakloud.AudioEncoding
}

func (b *SpeechBackend) Synthesize(ctx context.Context, req speakloud.SpeechRequest) ([]byte, error) {
	return b.SynthesizeFn(ctx, req)
}

func (b *SpeechBackend) Encoding() speakloud.AudioEncoding {
	return b.EncodingFn()
}

var _ speakloud.Concatenator = (*Concatenator)(nil)

// Concatenator is a mock implementation of speakloud.Concatenator.
type Concatenator struct {
	ConcatFn func(ctx context.Context, segments []speakloud.Segment, out string) error
}

func (c *Concatenator) Concat(ctx context.Context, segments []speakloud.Segment, out string) error {
	return c.ConcatFn(ctx, segments, out)
}

var _ speakloud.DurationProber = (*DurationProber)(nil)

// DurationProber is a mock implementation of speakloud.DurationProber.
type DurationProber struct {
	DurationFn func(ctx context.Context, path string) (float64, error)
}

func (p *DurationProber) Duration(ctx context.Context, path string) (float64, error) {
	return p.DurationFn(ctx, path)
}

var _ speakloud.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of speakloud.ArtifactStore.
type ArtifactStore struct {
	ExistsFn   func(ctx context.Context, key string) (bool, error)
	PutFn      func(ctx context.Context, key, path, contentType string) (string, error)
	LocationFn func(key string) string
}

func (s *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.ExistsFn(ctx, key)
}

func (s *ArtifactStore) Put(ctx context.Context, key, path, contentType string) (string, error) {
	return s.PutFn(ctx, key, path, contentType)
}

func (s *ArtifactStore) Location(key string) string {
	return s.LocationFn(key)
}

var _ speakloud.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a mock implementation of speakloud.Synthesizer.
type Synthesizer struct {
	SynthesizeFn func(ctx context.Context, req speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error)
}

func (s *Synthesizer) Synthesize(ctx context.Context, req speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
	return s.SynthesizeFn(ctx, req)
}

var _ speakloud.ItemSink = (*ItemSink)(nil)

// ItemSink is a mock implementation of speakloud.ItemSink.
type ItemSink struct {
	UpdateExtractionFn func(ctx context.Context, itemID string, result *speakloud.ExtractionResult) error
	UpdateSynthesisFn  func(ctx context.Context, itemID string, result *speakloud.SynthesisResult) error
	MarkFailedFn       func(ctx context.Context, itemID, stage, message string) error
}

func (s *ItemSink) UpdateExtraction(ctx context.Context, itemID string, result *speakloud.ExtractionResult) error {
	return s.UpdateExtractionFn(ctx, itemID, result)
}

func (s *ItemSink) UpdateSynthesis(ctx context.Context, itemID string, result *speakloud.SynthesisResult) error {
	return s.UpdateSynthesisFn(ctx, itemID, result)
}

func (s *ItemSink) MarkFailed(ctx context.Context, itemID, stage, message string) error {
	return s.MarkFailedFn(ctx, itemID, stage, message)
}

var _ speakloud.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of speakloud.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
