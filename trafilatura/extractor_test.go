package trafilatura_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements speakloud.Extractor at compile time.
var _ speakloud.Extractor = (*trafilatura.Extractor)(nil)

func articleHTML() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>River Town Rebuilds</title>
<meta property="og:title" content="River Town Rebuilds">
<meta name="author" content="Jane Doe"></head><body>
<nav><a href="/">Home</a><a href="/world">World</a></nav>
<article><h1>River Town Rebuilds</h1>`)
	for i := range 8 {
		fmt.Fprintf(&b, "<p>Paragraph %d tells how residents of the river town worked through the winter to rebuild homes, shops and the old stone bridge after the spring flood swept through the valley.</p>\n", i)
	}
	b.WriteString(`</article><footer><p>Copyright 2024 Example Corp</p></footer></body></html>`)
	return b.String()
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts main content as flat paragraphs", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		out := ext.Extract(context.Background(), &speakloud.Page{URL: "https://example.com/story", HTML: articleHTML()})

		require.True(t, out.OK(), out.Reason)
		assert.Equal(t, speakloud.StrategyTrafilatura, out.Candidate.Source)
		assert.Contains(t, out.Candidate.Text, "old stone bridge")
		assert.NotContains(t, out.Candidate.Text, "Copyright 2024 Example Corp")
		assert.False(t, speakloud.HasStructure(out.Candidate.Blocks))
	})

	t.Run("reads title from metadata", func(t *testing.T) {
		t.Parallel()

		out := trafilatura.NewExtractor().Extract(context.Background(), &speakloud.Page{URL: "https://example.com/story", HTML: articleHTML()})

		require.True(t, out.OK(), out.Reason)
		assert.Equal(t, "River Town Rebuilds", out.Candidate.Title)
	})

	t.Run("declines empty input", func(t *testing.T) {
		t.Parallel()

		out := trafilatura.NewExtractor().Extract(context.Background(), &speakloud.Page{URL: "https://example.com/", HTML: "  "})

		assert.False(t, out.OK())
		assert.Equal(t, "empty HTML input", out.Reason)
	})
}
