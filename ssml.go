package speakloud

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SSMLBudget is the largest chunk BuildSSML emits, in bytes, envelope
// included.
const SSMLBudget = 4500

// MaxSSMLBytes is the hard request ceiling of the speech backends.
const MaxSSMLBytes = 5000

const (
	speakOpen  = "<speak>"
	speakClose = "</speak>"
)

// SSMLChunk is one speech markup document ready for synthesis.
type SSMLChunk struct {
	SSML  string
	Bytes int
}

// BuildSSML renders the title, author and paragraphs as a sequence of
// <speak> documents no larger than SSMLBudget bytes each. The title and
// author preamble appears in the first chunk only. Paragraphs that cannot
// fit a chunk on their own are split at sentence, then word, then rune
// boundaries. It returns nil when there is nothing to say.
func BuildSSML(title, author string, paragraphs []string) []SSMLChunk {
	room := SSMLBudget - len(speakOpen) - len(speakClose)

	var pieces []string
	if t := NormalizeSpace(title); t != "" {
		pieces = append(pieces, splitToFit(t, wrapTitle, room)...)
	}
	if a := NormalizeSpace(author); a != "" {
		pieces = append(pieces, splitToFit(a, wrapAuthor, room)...)
	}
	for _, p := range paragraphs {
		if p = NormalizeSpace(p); p != "" {
			pieces = append(pieces, splitToFit(p, wrapParagraph, room)...)
		}
	}

	var chunks []SSMLChunk
	var buf strings.Builder
	seal := func() {
		if buf.Len() == 0 {
			return
		}
		doc := speakOpen + buf.String() + speakClose
		chunks = append(chunks, SSMLChunk{SSML: doc, Bytes: len(doc)})
		buf.Reset()
	}
	for _, piece := range pieces {
		if buf.Len() > 0 && buf.Len()+len(piece) > room {
			seal()
		}
		buf.WriteString(piece)
	}
	seal()
	return chunks
}

func wrapTitle(s string) string {
	return `<emphasis level="strong">` + html.EscapeString(s) + `</emphasis><break time="600ms"/>`
}

func wrapAuthor(s string) string {
	return "By " + html.EscapeString(s) + `<break time="800ms"/>`
}

func wrapParagraph(s string) string {
	return "<p>" + html.EscapeString(s) + `</p><break time="500ms"/>`
}

// splitToFit returns wrapped pieces of text each at most room bytes long.
func splitToFit(text string, wrap func(string) string, room int) []string {
	if w := wrap(text); len(w) <= room {
		return []string{w}
	}
	for _, split := range []func(string) []string{splitSentences, strings.Fields} {
		if units := split(text); len(units) > 1 {
			return pack(units, wrap, room)
		}
	}
	return splitRunes(text, wrap, room)
}

// pack greedily joins units with spaces into pieces that fit room.
func pack(units []string, wrap func(string) string, room int) []string {
	var out []string
	cur := ""
	for _, u := range units {
		next := u
		if cur != "" {
			next = cur + " " + u
		}
		if len(wrap(next)) <= room {
			cur = next
			continue
		}
		if cur != "" {
			out = append(out, wrap(cur))
			cur = ""
		}
		if len(wrap(u)) <= room {
			cur = u
			continue
		}
		out = append(out, splitToFit(u, wrap, room)...)
	}
	if cur != "" {
		out = append(out, wrap(cur))
	}
	return out
}

func splitRunes(text string, wrap func(string) string, room int) []string {
	overhead := len(wrap(""))
	var out []string
	var cur strings.Builder
	size := overhead
	for _, r := range text {
		n := len(html.EscapeString(string(r)))
		if cur.Len() > 0 && size+n > room {
			out = append(out, wrap(cur.String()))
			cur.Reset()
			size = overhead
		}
		cur.WriteRune(r)
		size += n
	}
	if cur.Len() > 0 {
		out = append(out, wrap(cur.String()))
	}
	return out
}

// splitSentences cuts text after terminal punctuation followed by space.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) {
			if c, _ := utf8.DecodeRuneInString(text[next:]); !unicode.IsSpace(c) {
				continue
			}
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			out = append(out, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
