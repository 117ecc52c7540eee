package readability_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/goquery"
	"github.com/fwojciec/speakloud/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements speakloud.Extractor at compile time.
var _ speakloud.Extractor = (*readability.Extractor)(nil)

func articleHTML() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Field Notes</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Field Notes</h1>`)
	for i := range 6 {
		fmt.Fprintf(&b, "<p>Observation %d: the migrating geese arrived earlier than expected this season, settling along the marsh edge where the reeds grow tall and the water stays shallow.</p>\n", i)
	}
	b.WriteString(`<h2>What we saw</h2>
<ul><li>Canada geese in large flocks along the northern shore</li><li>Herons standing still in the shallow water near the reeds</li></ul>
<blockquote>The marsh was louder than any year I can remember, said the warden.</blockquote>`)
	for i := range 4 {
		fmt.Fprintf(&b, "<p>Closing note %d: volunteers will return next month to count nests and record water levels along the marsh for the annual survey.</p>\n", i)
	}
	b.WriteString(`</article></body></html>`)
	return b.String()
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("keeps typed structure", func(t *testing.T) {
		t.Parallel()

		ext := readability.NewExtractor()
		out := ext.Extract(context.Background(), &speakloud.Page{URL: "https://example.com/notes", HTML: articleHTML()})

		require.True(t, out.OK(), out.Reason)
		assert.Equal(t, speakloud.StrategyReadability, out.Candidate.Source)
		assert.True(t, speakloud.HasStructure(out.Candidate.Blocks))
		assert.Contains(t, out.Candidate.Text, "migrating geese")
		assert.Contains(t, out.Candidate.Text, "Herons standing still")
		assert.Equal(t, "Field Notes", out.Candidate.Title)
	})

	t.Run("extracts cleaned article inside a widget-named wrapper", func(t *testing.T) {
		t.Parallel()

		html := strings.NewReplacer(
			"<article>", `<div class="article-body has-social-links">`,
			"</article>", "</div>",
		).Replace(articleHTML())
		cleaned := goquery.NewCleaner().Clean(html)

		out := readability.NewExtractor().Extract(context.Background(), &speakloud.Page{URL: "https://example.com/notes", HTML: cleaned})

		require.True(t, out.OK(), out.Reason)
		assert.Contains(t, out.Candidate.Text, "migrating geese")
		assert.Contains(t, out.Candidate.Text, "volunteers will return")
	})

	t.Run("reports overridden name", func(t *testing.T) {
		t.Parallel()

		ext := readability.NewExtractor(readability.WithName(speakloud.StrategyBrowser))
		out := ext.Extract(context.Background(), &speakloud.Page{URL: "https://example.com/notes", HTML: articleHTML()})

		require.True(t, out.OK(), out.Reason)
		assert.Equal(t, speakloud.StrategyBrowser, ext.Name())
		assert.Equal(t, speakloud.StrategyBrowser, out.Candidate.Source)
	})

	t.Run("declines empty input", func(t *testing.T) {
		t.Parallel()

		out := readability.NewExtractor().Extract(context.Background(), &speakloud.Page{URL: "https://example.com/"})

		assert.False(t, out.OK())
	})
}
