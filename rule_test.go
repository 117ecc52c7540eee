package speakloud_test

import (
	"testing"

	"github.com/fwojciec/speakloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid rule", func(t *testing.T) {
		t.Parallel()

		r := &speakloud.Rule{Pattern: "example.com", PatternType: speakloud.PatternDomain, PreferredExtractor: "readability"}
		assert.NoError(t, r.Validate())
	})

	t.Run("missing pattern", func(t *testing.T) {
		t.Parallel()

		r := &speakloud.Rule{PatternType: speakloud.PatternDomain, PreferredExtractor: "readability"}
		err := r.Validate()
		require.Error(t, err)
		assert.Equal(t, speakloud.EINVALID, speakloud.ErrorCode(err))
	})

	t.Run("unknown pattern type", func(t *testing.T) {
		t.Parallel()

		r := &speakloud.Rule{Pattern: "example.com", PatternType: "regex", PreferredExtractor: "readability"}
		assert.Equal(t, speakloud.EINVALID, speakloud.ErrorCode(r.Validate()))
	})

	t.Run("missing extractor", func(t *testing.T) {
		t.Parallel()

		r := &speakloud.Rule{Pattern: "example.com", PatternType: speakloud.PatternDomain}
		assert.Equal(t, speakloud.EINVALID, speakloud.ErrorCode(r.Validate()))
	})
}

func TestMatchRule(t *testing.T) {
	t.Parallel()

	domain := &speakloud.Rule{ID: "d", Pattern: "example.com", PatternType: speakloud.PatternDomain, PreferredExtractor: "browser"}
	sub := &speakloud.Rule{ID: "s", Pattern: "news.example.com", PatternType: speakloud.PatternDomain, PreferredExtractor: "domain"}
	prefix := &speakloud.Rule{ID: "p", Pattern: "https://other.org/blog/", PatternType: speakloud.PatternURLPrefix, PreferredExtractor: "readability"}
	longer := &speakloud.Rule{ID: "l", Pattern: "https://other.org/blog/2024/", PatternType: speakloud.PatternURLPrefix, PreferredExtractor: "trafilatura"}

	t.Run("domain rule matches www host", func(t *testing.T) {
		t.Parallel()

		got := speakloud.MatchRule([]*speakloud.Rule{domain}, "https://www.example.com/a")
		require.NotNil(t, got)
		assert.Equal(t, "d", got.ID)
	})

	t.Run("domain rule matches subdomains", func(t *testing.T) {
		t.Parallel()

		got := speakloud.MatchRule([]*speakloud.Rule{domain}, "https://blog.example.com/a")
		require.NotNil(t, got)
		assert.Equal(t, "d", got.ID)
	})

	t.Run("domain rule does not match lookalike host", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, speakloud.MatchRule([]*speakloud.Rule{domain}, "https://notexample.com/a"))
	})

	t.Run("most specific domain wins", func(t *testing.T) {
		t.Parallel()

		got := speakloud.MatchRule([]*speakloud.Rule{domain, sub}, "https://news.example.com/a")
		require.NotNil(t, got)
		assert.Equal(t, "s", got.ID)
	})

	t.Run("longest prefix wins", func(t *testing.T) {
		t.Parallel()

		got := speakloud.MatchRule([]*speakloud.Rule{prefix, longer}, "https://other.org/blog/2024/post")
		require.NotNil(t, got)
		assert.Equal(t, "l", got.ID)
	})

	t.Run("domain beats prefix", func(t *testing.T) {
		t.Parallel()

		p := &speakloud.Rule{ID: "p2", Pattern: "https://example.com/", PatternType: speakloud.PatternURLPrefix, PreferredExtractor: "readability"}
		got := speakloud.MatchRule([]*speakloud.Rule{p, domain}, "https://example.com/story")
		require.NotNil(t, got)
		assert.Equal(t, "d", got.ID)
	})

	t.Run("first listed wins ties", func(t *testing.T) {
		t.Parallel()

		dup := &speakloud.Rule{ID: "d2", Pattern: "example.com", PatternType: speakloud.PatternDomain, PreferredExtractor: "readability"}
		got := speakloud.MatchRule([]*speakloud.Rule{domain, dup}, "https://example.com/")
		require.NotNil(t, got)
		assert.Equal(t, "d", got.ID)
	})

	t.Run("no rules", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, speakloud.MatchRule(nil, "https://example.com/"))
	})
}
