package synth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/mock"
	"github.com/fwojciec/speakloud/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var markerRE = regexp.MustCompile(`P(\d{2})`)

// paragraphs returns n paragraphs each large enough to fill its own chunk.
func paragraphs(n int) string {
	var lines []string
	for i := range n {
		lines = append(lines, fmt.Sprintf("P%02d ", i)+strings.Repeat("word ", 800))
	}
	return strings.Join(lines, "\n")
}

func echoBackend() *mock.SpeechBackend {
	return &mock.SpeechBackend{
		SynthesizeFn: func(_ context.Context, req speakloud.SpeechRequest) ([]byte, error) {
			return []byte(markerRE.FindString(req.SSML)), nil
		},
		EncodingFn: func() speakloud.AudioEncoding { return speakloud.EncodingMP3 },
	}
}

// fileConcat writes the segment contents, in the order given, to out.
func fileConcat() *mock.Concatenator {
	return &mock.Concatenator{
		ConcatFn: func(_ context.Context, segments []speakloud.Segment, out string) error {
			var merged []byte
			for _, s := range segments {
				b, err := os.ReadFile(s.Path)
				if err != nil {
					return err
				}
				merged = append(merged, b...)
			}
			return os.WriteFile(out, merged, 0o600)
		},
	}
}

func fixedProber(d float64) *mock.DurationProber {
	return &mock.DurationProber{
		DurationFn: func(_ context.Context, _ string) (float64, error) { return d, nil },
	}
}

// memoryStore records uploads.
type memoryStore struct {
	existing map[string]bool
	puts     atomic.Int32
	content  string
	ctype    string
}

func (m *memoryStore) mock() *mock.ArtifactStore {
	return &mock.ArtifactStore{
		ExistsFn: func(_ context.Context, key string) (bool, error) {
			return m.existing[key], nil
		},
		PutFn: func(_ context.Context, key, path, contentType string) (string, error) {
			m.puts.Add(1)
			b, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			m.content = string(b)
			m.ctype = contentType
			return "mem://" + key, nil
		},
		LocationFn: func(key string) string { return "mem://" + key },
	}
}

func TestSynthesizer_Synthesize(t *testing.T) {
	t.Parallel()

	t.Run("segments are merged in chunk order regardless of completion order", func(t *testing.T) {
		t.Parallel()

		const n = 6
		backend := &mock.SpeechBackend{
			SynthesizeFn: func(ctx context.Context, req speakloud.SpeechRequest) ([]byte, error) {
				marker := markerRE.FindStringSubmatch(req.SSML)
				idx, _ := strconv.Atoi(marker[1])
				// Later chunks finish first.
				time.Sleep(time.Duration(n-idx) * 15 * time.Millisecond)
				return []byte(marker[0]), nil
			},
			EncodingFn: func() speakloud.AudioEncoding { return speakloud.EncodingMP3 },
		}
		store := &memoryStore{}
		s := synth.NewSynthesizer(backend, fileConcat(), fixedProber(12.5), store.mock(), synth.WithTempDir(t.TempDir()))

		result, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: paragraphs(n)})

		require.NoError(t, err)
		assert.Equal(t, "P00P01P02P03P04P05", store.content)
		assert.Equal(t, n, result.SegmentCount)
		assert.Equal(t, speakloud.SynthesisDone, result.Status)
		assert.Equal(t, "item1.mp3", result.Key)
		assert.Equal(t, "mem://item1.mp3", result.Location)
		assert.InDelta(t, 12.5, result.DurationSeconds, 0.001)
		assert.Equal(t, "audio/mpeg", store.ctype)
	})

	t.Run("skips existing artifact", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		backend := echoBackend()
		backend.SynthesizeFn = func(_ context.Context, _ speakloud.SpeechRequest) ([]byte, error) {
			calls.Add(1)
			return nil, nil
		}
		store := &memoryStore{existing: map[string]bool{"item1.mp3": true}}
		s := synth.NewSynthesizer(backend, fileConcat(), fixedProber(1), store.mock())

		result, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "Hello."})

		require.NoError(t, err)
		assert.Equal(t, speakloud.SynthesisSkipped, result.Status)
		assert.Equal(t, "item1.mp3", result.Key)
		assert.Equal(t, "mem://item1.mp3", result.Location)
		assert.Zero(t, calls.Load())
		assert.Zero(t, store.puts.Load())
	})

	t.Run("overwrite resynthesizes existing artifact", func(t *testing.T) {
		t.Parallel()

		store := &memoryStore{existing: map[string]bool{"item1.mp3": true}}
		s := synth.NewSynthesizer(echoBackend(), fileConcat(), fixedProber(1), store.mock(), synth.WithTempDir(t.TempDir()))

		result, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: paragraphs(1), Overwrite: true})

		require.NoError(t, err)
		assert.Equal(t, speakloud.SynthesisDone, result.Status)
		assert.Equal(t, int32(1), store.puts.Load())
	})

	t.Run("chunk failure aborts without upload and cleans up", func(t *testing.T) {
		t.Parallel()

		backend := echoBackend()
		backend.SynthesizeFn = func(_ context.Context, req speakloud.SpeechRequest) ([]byte, error) {
			if strings.Contains(req.SSML, "P02") {
				return nil, errors.New("quota exceeded")
			}
			return []byte("ok"), nil
		}
		tmp := t.TempDir()
		store := &memoryStore{}
		s := synth.NewSynthesizer(backend, fileConcat(), fixedProber(1), store.mock(),
			synth.WithTempDir(tmp), synth.WithRetryDelays(nil))

		_, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: paragraphs(4)})

		require.Error(t, err)
		assert.Equal(t, speakloud.ESYNTHESIS, speakloud.ErrorCode(err))
		assert.Contains(t, err.Error(), "quota exceeded")
		assert.Zero(t, store.puts.Load())
		entries, err := os.ReadDir(tmp)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("retries transient backend failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		backend := echoBackend()
		backend.SynthesizeFn = func(_ context.Context, _ speakloud.SpeechRequest) ([]byte, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("503")
			}
			return []byte("ok"), nil
		}
		store := &memoryStore{}
		s := synth.NewSynthesizer(backend, fileConcat(), fixedProber(1), store.mock(),
			synth.WithTempDir(t.TempDir()), synth.WithRetryDelays([]time.Duration{time.Millisecond}))

		_, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "Hello there."})

		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("concat failure is a synthesis error", func(t *testing.T) {
		t.Parallel()

		concat := &mock.Concatenator{ConcatFn: func(_ context.Context, _ []speakloud.Segment, _ string) error {
			return errors.New("exit status 1")
		}}
		store := &memoryStore{}
		s := synth.NewSynthesizer(echoBackend(), concat, fixedProber(1), store.mock(), synth.WithTempDir(t.TempDir()))

		_, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "Hello."})

		require.Error(t, err)
		assert.Equal(t, speakloud.ESYNTHESIS, speakloud.ErrorCode(err))
		assert.Zero(t, store.puts.Load())
	})

	t.Run("probe failure reports zero duration", func(t *testing.T) {
		t.Parallel()

		prober := &mock.DurationProber{DurationFn: func(_ context.Context, _ string) (float64, error) {
			return 0, errors.New("ffprobe not found")
		}}
		store := &memoryStore{}
		s := synth.NewSynthesizer(echoBackend(), fileConcat(), prober, store.mock(), synth.WithTempDir(t.TempDir()))

		result, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "Hello."})

		require.NoError(t, err)
		assert.Zero(t, result.DurationSeconds)
	})

	t.Run("passes voice and speaking rate", func(t *testing.T) {
		t.Parallel()

		var got speakloud.SpeechRequest
		backend := echoBackend()
		backend.SynthesizeFn = func(_ context.Context, req speakloud.SpeechRequest) ([]byte, error) {
			got = req
			return []byte("ok"), nil
		}
		store := &memoryStore{}
		s := synth.NewSynthesizer(backend, fileConcat(), fixedProber(1), store.mock(), synth.WithTempDir(t.TempDir()))

		_, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "Hello.", Voice: "en-GB-Standard-A"})

		require.NoError(t, err)
		assert.Equal(t, "en-GB-Standard-A", got.Voice)
		assert.InDelta(t, 1.1, got.SpeakingRate, 0.0001)
		assert.True(t, strings.HasPrefix(got.SSML, "<speak>"))
	})

	t.Run("rejects unknown voice", func(t *testing.T) {
		t.Parallel()

		s := synth.NewSynthesizer(echoBackend(), fileConcat(), fixedProber(1), (&memoryStore{}).mock())

		_, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "Hello.", Voice: "xx-Robot"})

		assert.Equal(t, speakloud.EINVALID, speakloud.ErrorCode(err))
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		s := synth.NewSynthesizer(echoBackend(), fileConcat(), fixedProber(1), (&memoryStore{}).mock())

		_, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Text: "  \n "})

		assert.Equal(t, speakloud.ESYNTHESIS, speakloud.ErrorCode(err))
	})

	t.Run("narrates title and author without body text", func(t *testing.T) {
		t.Parallel()

		var ssml []string
		backend := echoBackend()
		backend.SynthesizeFn = func(_ context.Context, req speakloud.SpeechRequest) ([]byte, error) {
			ssml = append(ssml, req.SSML)
			return []byte("audio"), nil
		}
		store := &memoryStore{}
		s := synth.NewSynthesizer(backend, fileConcat(), fixedProber(2), store.mock(), synth.WithTempDir(t.TempDir()))

		result, err := s.Synthesize(context.Background(), speakloud.SynthesisRequest{ItemID: "item1", Title: "Headline", Author: "Jane Doe"})

		require.NoError(t, err)
		assert.Equal(t, speakloud.SynthesisDone, result.Status)
		assert.Equal(t, 1, result.SegmentCount)
		require.Len(t, ssml, 1)
		assert.Contains(t, ssml[0], "Headline")
		assert.Contains(t, ssml[0], "By Jane Doe")
	})
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc.wav", synth.Key("abc", speakloud.EncodingWAV))
	assert.Equal(t, "abc.mp3", filepath.Base(synth.Key("abc", speakloud.EncodingMP3)))
}
