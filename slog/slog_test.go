package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/mock"
	speakslog "github.com/fwojciec/speakloud/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*speakloud.FetchResult, error) {
				return &speakloud.FetchResult{HTML: "<html>content</html>", StatusCode: 200}, nil
			},
		}

		res, err := speakslog.NewLoggingFetcher(inner, newLogger(&buf)).Fetch(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", res.HTML)
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "url=https://example.com/a")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*speakloud.FetchResult, error) {
				return nil, errors.New("network error")
			},
		}

		_, err := speakslog.NewLoggingFetcher(inner, newLogger(&buf)).Fetch(context.Background(), "https://example.com/a")

		require.Error(t, err)
		assert.Contains(t, buf.String(), `err="network error"`)
	})
}

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs accepted candidate", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Extractor{
			NameFn: func() string { return "trafilatura" },
			ExtractFn: func(ctx context.Context, page *speakloud.Page) speakloud.Outcome {
				return speakloud.Accept(&speakloud.Candidate{Text: "héllo"})
			},
		}

		e := speakslog.NewLoggingExtractor(inner, newLogger(&buf))
		out := e.Extract(context.Background(), &speakloud.Page{URL: "https://example.com/a"})

		assert.True(t, out.OK())
		assert.Equal(t, "trafilatura", e.Name())
		output := buf.String()
		assert.Contains(t, output, "strategy=trafilatura")
		assert.Contains(t, output, "ok=true")
		assert.Contains(t, output, "chars=5")
	})

	t.Run("logs decline reason", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Extractor{
			NameFn: func() string { return "domain" },
			ExtractFn: func(ctx context.Context, page *speakloud.Page) speakloud.Outcome {
				return speakloud.Decline("no selector for %s", "example.com")
			},
		}

		out := speakslog.NewLoggingExtractor(inner, newLogger(&buf)).Extract(context.Background(), &speakloud.Page{URL: "https://example.com/a"})

		assert.False(t, out.OK())
		assert.Contains(t, buf.String(), `reason="no selector for example.com"`)
	})

	t.Run("wraps every strategy", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		name := func(n string) *mock.Extractor {
			return &mock.Extractor{NameFn: func() string { return n }}
		}

		wrapped := speakslog.WrapExtractors([]speakloud.Extractor{name("a"), name("b")}, newLogger(&buf))

		require.Len(t, wrapped, 2)
		assert.Equal(t, "b", wrapped[1].Name())
	})
}

func TestLoggingArticleExtractor_Extract(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.ArticleExtractor{
		ExtractFn: func(ctx context.Context, req speakloud.ExtractionRequest) (*speakloud.ExtractionResult, error) {
			return &speakloud.ExtractionResult{Source: "readability", WordCount: 420}, nil
		},
	}

	_, err := speakslog.NewLoggingArticleExtractor(inner, newLogger(&buf)).Extract(context.Background(),
		speakloud.ExtractionRequest{URL: "https://example.com/a", ItemID: "item1"})

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "item_id=item1")
	assert.Contains(t, output, "source=readability")
	assert.Contains(t, output, "words=420")
}

func TestLoggingSpeechBackend_Synthesize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.SpeechBackend{
		SynthesizeFn: func(ctx context.Context, req speakloud.SpeechRequest) ([]byte, error) {
			return []byte("abc"), nil
		},
		EncodingFn: func() speakloud.AudioEncoding { return speakloud.EncodingMP3 },
	}

	b := speakslog.NewLoggingSpeechBackend(inner, newLogger(&buf))
	audio, err := b.Synthesize(context.Background(), speakloud.SpeechRequest{SSML: "<speak/>", Voice: "en-US-Standard-C"})

	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), audio)
	assert.Equal(t, speakloud.EncodingMP3, b.Encoding())
	output := buf.String()
	assert.Contains(t, output, "ssml_bytes=8")
	assert.Contains(t, output, "audio_bytes=3")
}

func TestLoggingSynthesizer_Synthesize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Synthesizer{
		SynthesizeFn: func(ctx context.Context, req speakloud.SynthesisRequest) (*speakloud.SynthesisResult, error) {
			return &speakloud.SynthesisResult{Status: speakloud.SynthesisDone, SegmentCount: 3}, nil
		},
	}

	_, err := speakslog.NewLoggingSynthesizer(inner, newLogger(&buf)).Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1"})

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "status=done")
	assert.Contains(t, output, "segments=3")
}

func TestLoggingRuleService(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.RuleService{
		CreateRuleFn: func(ctx context.Context, rule *speakloud.Rule) error {
			rule.ID = "r1"
			return nil
		},
		ListRulesFn: func(ctx context.Context) ([]*speakloud.Rule, error) {
			return []*speakloud.Rule{{ID: "r1"}}, nil
		},
		DeleteRuleFn: func(ctx context.Context, id string) error {
			return speakloud.Errorf(speakloud.ENOTFOUND, "rule not found")
		},
	}
	s := speakslog.NewLoggingRuleService(inner, newLogger(&buf))

	require.NoError(t, s.CreateRule(context.Background(), &speakloud.Rule{Pattern: "example.com"}))
	rules, err := s.ListRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	require.Error(t, s.DeleteRule(context.Background(), "missing"))

	output := buf.String()
	assert.Contains(t, output, `msg="create rule" id=r1`)
	assert.Contains(t, output, "count=1")
	assert.Contains(t, output, `err="rule not found"`)
}
