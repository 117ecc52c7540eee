package speakloud_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/speakloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSSML(t *testing.T) {
	t.Parallel()

	t.Run("nothing to say", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, speakloud.BuildSSML("", " ", []string{"", "  "}))
	})

	t.Run("renders preamble and paragraphs", func(t *testing.T) {
		t.Parallel()

		chunks := speakloud.BuildSSML("Big & Bold", "Jo", []string{"First <one>.", "Second."})

		require.Len(t, chunks, 1)
		want := `<speak><emphasis level="strong">Big &amp; Bold</emphasis><break time="600ms"/>` +
			`By Jo<break time="800ms"/>` +
			`<p>First &lt;one&gt;.</p><break time="500ms"/>` +
			`<p>Second.</p><break time="500ms"/></speak>`
		assert.Equal(t, want, chunks[0].SSML)
		assert.Equal(t, len(want), chunks[0].Bytes)
	})

	t.Run("preamble appears in first chunk only", func(t *testing.T) {
		t.Parallel()

		paragraph := strings.Repeat("word ", 300)
		chunks := speakloud.BuildSSML("Title", "Author", []string{paragraph, paragraph, paragraph, paragraph})

		require.Greater(t, len(chunks), 1)
		assert.Contains(t, chunks[0].SSML, "<emphasis")
		for _, c := range chunks[1:] {
			assert.NotContains(t, c.SSML, "<emphasis")
			assert.NotContains(t, c.SSML, "By Author")
		}
	})

	t.Run("chunks stay within the byte budget", func(t *testing.T) {
		t.Parallel()

		// Five paragraphs of budget size each: 5 x 4500 bytes of content.
		var paragraphs []string
		for range 5 {
			paragraphs = append(paragraphs, strings.Repeat("Sentence here. ", speakloud.SSMLBudget/15))
		}

		chunks := speakloud.BuildSSML("", "", paragraphs)

		assert.GreaterOrEqual(t, len(chunks), 5)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c.SSML), speakloud.SSMLBudget)
			assert.LessOrEqual(t, c.Bytes, speakloud.MaxSSMLBytes)
			assert.True(t, strings.HasPrefix(c.SSML, "<speak>"))
			assert.True(t, strings.HasSuffix(c.SSML, "</speak>"))
		}
	})

	t.Run("splits a single unbroken word", func(t *testing.T) {
		t.Parallel()

		chunks := speakloud.BuildSSML("", "", []string{strings.Repeat("ü&", 3000)})

		require.Greater(t, len(chunks), 1)
		var text strings.Builder
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c.SSML), speakloud.SSMLBudget)
			text.WriteString(c.SSML)
		}
		assert.Equal(t, 3000, strings.Count(text.String(), "ü"))
	})

	t.Run("keeps paragraph order", func(t *testing.T) {
		t.Parallel()

		var paragraphs []string
		for i := range 200 {
			paragraphs = append(paragraphs, strings.Repeat("x", 40)+" p"+string(rune('A'+i%26)))
		}

		chunks := speakloud.BuildSSML("", "", paragraphs)

		var all strings.Builder
		for _, c := range chunks {
			all.WriteString(c.SSML)
		}
		assert.Equal(t, 200, strings.Count(all.String(), "<p>"))
		assert.Less(t, strings.Index(all.String(), " pA"), strings.Index(all.String(), " pB"))
	})
}
