package process_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/mock"
	"github.com/fwojciec/speakloud/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures sink calls.
type recordingSink struct {
	mu         sync.Mutex
	extraction *speakloud.ExtractionResult
	synthesis  *speakloud.SynthesisResult
	failStage  string
	failMsg    string
}

func (r *recordingSink) mock() *mock.ItemSink {
	return &mock.ItemSink{
		UpdateExtractionFn: func(_ context.Context, _ string, result *speakloud.ExtractionResult) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.extraction = result
			return nil
		},
		UpdateSynthesisFn: func(_ context.Context, _ string, result *speakloud.SynthesisResult) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.synthesis = result
			return nil
		},
		MarkFailedFn: func(_ context.Context, _, stage, message string) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failStage, r.failMsg = stage, message
			return nil
		},
	}
}

func okExtractor() *mock.ArticleExtractor {
	return &mock.ArticleExtractor{
		ExtractFn: func(_ context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
			return &speakloud.ExtractionResult{
				URL:      req.URL,
				Text:     "First paragraph.\nSecond paragraph.",
				Metadata: speakloud.Metadata{Title: "Title", Author: "Author"},
				Source:   speakloud.StrategyTrafilatura,
			}, nil
		},
	}
}

func okSynthesizer(got *speakloud.SynthesisRequest) *mock.Synthesizer {
	return &mock.Synthesizer{
		SynthesizeFn: func(_ context.Context, req speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
			if got != nil {
				*got = req
			}
			return &speakloud.SynthesisResult{Location: "mem://" + req.ItemID + ".mp3", Status: speakloud.SynthesisDone}, nil
		},
	}
}

func TestProcessor_Process(t *testing.T) {
	t.Parallel()

	t.Run("extracts narrates and records both stages", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		var req speakloud.SynthesisRequest
		p := process.NewProcessor(okExtractor(), okSynthesizer(&req), sink.mock())

		out := p.Process(context.Background(), process.Submission{ItemID: "item1", URL: "https://example.com/a", Voice: "en-GB-Standard-A"})

		require.True(t, out.OK(), "%v", out.Err)
		assert.Equal(t, "Title", req.Title)
		assert.Equal(t, "Author", req.Author)
		assert.Equal(t, "en-GB-Standard-A", req.Voice)
		assert.Equal(t, "First paragraph.\nSecond paragraph.", req.Text)
		require.NotNil(t, sink.extraction)
		require.NotNil(t, sink.synthesis)
		assert.Equal(t, "mem://item1.mp3", sink.synthesis.Location)
		assert.Empty(t, sink.failStage)
	})

	t.Run("fetch failure records diagnostics and fails at fetch", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		extractor := &mock.ArticleExtractor{
			ExtractFn: func(_ context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
				return &speakloud.ExtractionResult{
						URL:           req.URL,
						ExtractStatus: map[string]speakloud.Status{speakloud.StageFetch: speakloud.StatusFailed},
						Error:         speakloud.ErrFetchFailed,
					},
					speakloud.Errorf(speakloud.EFETCH, "HTTP 404 for %s", req.URL)
			},
		}
		p := process.NewProcessor(extractor, okSynthesizer(nil), sink.mock())

		out := p.Process(context.Background(), process.Submission{ItemID: "item1", URL: "https://example.com/a"})

		assert.False(t, out.OK())
		assert.Equal(t, speakloud.StageFetch, out.FailedStage)
		assert.Equal(t, speakloud.StatusFailed, sink.extraction.ExtractStatus[speakloud.StageFetch])
		assert.Equal(t, speakloud.StageFetch, sink.failStage)
		assert.Equal(t, "HTTP 404 for https://example.com/a", sink.failMsg)
		assert.Nil(t, sink.synthesis)
	})

	t.Run("extraction failure skips synthesis", func(t *testing.T) {
		t.Parallel()

		called := false
		synth := &mock.Synthesizer{
			SynthesizeFn: func(_ context.Context, _ speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
				called = true
				return nil, nil
			},
		}
		extractor := &mock.ArticleExtractor{
			ExtractFn: func(_ context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
				return &speakloud.ExtractionResult{Error: speakloud.ErrAllExtractorsFailed},
					speakloud.Errorf(speakloud.EEXTRACT, "all extractors failed")
			},
		}
		sink := &recordingSink{}

		out := process.NewProcessor(extractor, synth, sink.mock()).Process(context.Background(),
			process.Submission{ItemID: "item1", URL: "https://example.com/a"})

		assert.Equal(t, speakloud.StageExtract, out.FailedStage)
		assert.False(t, called)
		assert.Equal(t, speakloud.StageExtract, sink.failStage)
	})

	t.Run("synthesis failure is recorded", func(t *testing.T) {
		t.Parallel()

		synth := &mock.Synthesizer{
			SynthesizeFn: func(_ context.Context, _ speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
				return nil, speakloud.Errorf(speakloud.ESYNTHESIS, "synthesize chunk 2: quota exceeded")
			},
		}
		sink := &recordingSink{}

		out := process.NewProcessor(okExtractor(), synth, sink.mock()).Process(context.Background(),
			process.Submission{ItemID: "item1", URL: "https://example.com/a"})

		assert.Equal(t, speakloud.StageSynthesize, out.FailedStage)
		assert.Equal(t, speakloud.ESYNTHESIS, speakloud.ErrorCode(out.Err))
		assert.Equal(t, "synthesize chunk 2: quota exceeded", sink.failMsg)
	})

	t.Run("panic is recovered and recorded", func(t *testing.T) {
		t.Parallel()

		extractor := &mock.ArticleExtractor{
			ExtractFn: func(_ context.Context, _ speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
				panic("index out of range")
			},
		}
		sink := &recordingSink{}

		out := process.NewProcessor(extractor, okSynthesizer(nil), sink.mock()).Process(context.Background(),
			process.Submission{ItemID: "item1", URL: "https://example.com/a"})

		assert.Equal(t, speakloud.EINTERNAL, speakloud.ErrorCode(out.Err))
		assert.Equal(t, speakloud.StageExtract, sink.failStage)
		assert.Contains(t, sink.failMsg, "index out of range")
	})

	t.Run("deadline propagates to stages", func(t *testing.T) {
		t.Parallel()

		extractor := &mock.ArticleExtractor{
			ExtractFn: func(ctx context.Context, _ speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
				<-ctx.Done()
				return &speakloud.ExtractionResult{Error: speakloud.ErrFetchFailed},
					speakloud.Errorf(speakloud.EFETCH, "fetch: %v", ctx.Err())
			},
		}
		sink := &recordingSink{}

		out := process.NewProcessor(extractor, okSynthesizer(nil), sink.mock(), process.WithTimeout(10*time.Millisecond)).
			Process(context.Background(), process.Submission{ItemID: "item1", URL: "https://example.com/a"})

		assert.False(t, out.OK())
		assert.Contains(t, sink.failMsg, "deadline exceeded")
	})

	t.Run("rejects unknown voice before extraction", func(t *testing.T) {
		t.Parallel()

		called := false
		extractor := &mock.ArticleExtractor{
			ExtractFn: func(_ context.Context, _ speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
				called = true
				return nil, nil
			},
		}
		sink := &recordingSink{}

		out := process.NewProcessor(extractor, okSynthesizer(nil), sink.mock()).Process(context.Background(),
			process.Submission{ItemID: "item1", URL: "https://example.com/a", Voice: "robot"})

		assert.Equal(t, speakloud.EINVALID, speakloud.ErrorCode(out.Err))
		assert.False(t, called)
	})

	t.Run("skip synthesis stops after extraction", func(t *testing.T) {
		t.Parallel()

		called := false
		synth := &mock.Synthesizer{
			SynthesizeFn: func(_ context.Context, _ speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
				called = true
				return nil, errors.New("unexpected")
			},
		}
		sink := &recordingSink{}

		out := process.NewProcessor(okExtractor(), synth, sink.mock()).Process(context.Background(),
			process.Submission{ItemID: "item1", URL: "https://example.com/a", SkipSynthesis: true})

		assert.True(t, out.OK())
		assert.False(t, called)
		assert.NotNil(t, sink.extraction)
	})
}
