// Package synth narrates article text: it chunks the text into SSML, calls a
// speech backend for each chunk in parallel, joins the segments in order and
// uploads the merged artifact.
package synth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/speakloud"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of chunks synthesized at once.
const DefaultConcurrency = 4

var _ speakloud.Synthesizer = (*Synthesizer)(nil)

// Synthesizer implements speakloud.Synthesizer.
type Synthesizer struct {
	backend speakloud.SpeechBackend
	concat  speakloud.Concatenator
	prober  speakloud.DurationProber
	store   speakloud.ArtifactStore
	limit   int
	tempDir string
	delays  []time.Duration
	logger  *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithConcurrency sets how many chunks are synthesized at once.
func WithConcurrency(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithTempDir sets the parent directory for job scratch space.
// Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *Synthesizer) {
		s.tempDir = dir
	}
}

// WithRetryDelays sets the backoff used when a backend call fails.
// Pass nil to disable retries.
func WithRetryDelays(delays []time.Duration) Option {
	return func(s *Synthesizer) {
		s.delays = delays
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(
	backend speakloud.SpeechBackend,
	concat speakloud.Concatenator,
	prober speakloud.DurationProber,
	store speakloud.ArtifactStore,
	opts ...Option,
) *Synthesizer {
	s := &Synthesizer{
		backend: backend,
		concat:  concat,
		prober:  prober,
		store:   store,
		limit:   DefaultConcurrency,
		delays:  DefaultRetryDelays(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the artifact key for an item.
func Key(itemID string, enc speakloud.AudioEncoding) string {
	return itemID + "." + enc.Extension()
}

// Synthesize narrates req.Text. An existing artifact is reused unless
// req.Overwrite is set. Any chunk failure aborts the job and nothing is
// uploaded.
func (s *Synthesizer) Synthesize(ctx context.Context, req speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
	if req.ItemID == "" {
		return nil, speakloud.Errorf(speakloud.EINVALID, "item id required")
	}
	voice, err := speakloud.ResolveVoice(req.Voice)
	if err != nil {
		return nil, err
	}

	enc := s.backend.Encoding()
	key := Key(req.ItemID, enc)

	if !req.Overwrite {
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "check artifact %s: %v", key, err)
		}
		if exists {
			return &speakloud.SynthesisResult{
				Key:      key,
				Location: s.store.Location(key),
				Status:   speakloud.SynthesisSkipped,
			}, nil
		}
	}

	chunks := speakloud.BuildSSML(req.Title, req.Author, speakloud.Paragraphs(req.Text))
	if len(chunks) == 0 {
		return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "no text to narrate")
	}
	for i, c := range chunks {
		if c.Bytes > speakloud.MaxSSMLBytes {
			return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "chunk %d is %d bytes, over the %d byte limit", i, c.Bytes, speakloud.MaxSSMLBytes)
		}
	}

	dir, err := os.MkdirTemp(s.tempDir, "speakloud-"+req.ItemID+"-")
	if err != nil {
		return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "create work dir: %v", err)
	}
	defer os.RemoveAll(dir)

	segments, err := s.synthesizeChunks(ctx, dir, chunks, voice, enc)
	if err != nil {
		return nil, err
	}

	out := filepath.Join(dir, "merged."+enc.Extension())
	if err := s.concat.Concat(ctx, segments, out); err != nil {
		return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "concatenate %d segments: %v", len(segments), err)
	}

	duration, err := s.prober.Duration(ctx, out)
	if err != nil {
		s.logger.Warn("duration probe failed", "item_id", req.ItemID, "err", err)
		duration = 0
	}

	location, err := s.store.Put(ctx, key, out, enc.ContentType())
	if err != nil {
		return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "upload %s: %v", key, err)
	}

	return &speakloud.SynthesisResult{
		Location:        location,
		Key:             key,
		DurationSeconds: duration,
		SegmentCount:    len(segments),
		Status:          speakloud.SynthesisDone,
	}, nil
}

// synthesizeChunks writes one segment file per chunk. Segments are returned
// in chunk order regardless of completion order.
func (s *Synthesizer) synthesizeChunks(ctx context.Context, dir string, chunks []speakloud.SSMLChunk, voice string, enc speakloud.AudioEncoding) ([]speakloud.Segment, error) {
	segments := make([]speakloud.Segment, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, chunk := range chunks {
		g.Go(func() error {
			audio, err := withRetry(gctx, s.delays, func(ctx context.Context) ([]byte, error) {
				return s.backend.Synthesize(ctx, speakloud.SpeechRequest{
					SSML:         chunk.SSML,
					Voice:        voice,
					SpeakingRate: speakloud.DefaultSpeakingRate,
				})
			}, func(attempt int, err error) {
				s.logger.Warn("retrying chunk", "chunk", i, "attempt", attempt, "err", err)
			})
			if err != nil {
				return speakloud.Errorf(speakloud.ESYNTHESIS, "synthesize chunk %d: %v", i, err)
			}

			path := filepath.Join(dir, fmt.Sprintf("segment_%04d.%s", i, enc.Extension()))
			if err := os.WriteFile(path, audio, 0o600); err != nil {
				return speakloud.Errorf(speakloud.ESYNTHESIS, "write segment %d: %v", i, err)
			}
			segments[i] = speakloud.Segment{Path: path, Index: i}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return segments, nil
}
