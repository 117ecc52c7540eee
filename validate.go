package speakloud

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinTextLength is the minimum extracted text length, in runes.
const DefaultMinTextLength = 250

// maxReplacementRatio is the largest tolerated share of U+FFFD runes.
const maxReplacementRatio = 0.10

// ValidateText rejects degenerate extraction output and returns the trimmed
// text. It returns EVALIDATION for empty text, text shorter than minLength
// runes, text with more than 10% replacement characters, and text that still
// contains document markup.
func ValidateText(text string, minLength int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Errorf(EVALIDATION, "empty text")
	}

	n := utf8.RuneCountInString(text)
	if n < minLength {
		return "", Errorf(EVALIDATION, "text too short: %d < %d characters", n, minLength)
	}

	replacements := strings.Count(text, string(utf8.RuneError))
	if float64(replacements)/float64(n) > maxReplacementRatio {
		return "", Errorf(EVALIDATION, "garbled encoding: %d replacement characters", replacements)
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<body") {
		return "", Errorf(EVALIDATION, "text contains raw HTML markup")
	}

	return text, nil
}
