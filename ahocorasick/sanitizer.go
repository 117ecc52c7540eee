// Package ahocorasick implements the content sanitizer with a
// github.com/cloudflare/ahocorasick automaton over a boilerplate denylist.
package ahocorasick

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/fwojciec/speakloud"
)

var _ speakloud.Sanitizer = (*Sanitizer)(nil)

// DefaultPhrases are boilerplate markers. A block containing any of them,
// case-insensitively, is dropped.
var DefaultPhrases = []string{
	"subscribe to our",
	"sign up for our newsletter",
	"sign up for the newsletter",
	"newsletter sign-up",
	"get our newsletter",
	"we use cookies",
	"accept cookies",
	"cookie policy",
	"cookie settings",
	"share this article",
	"share this story",
	"share on facebook",
	"share on twitter",
	"share via email",
	"follow us on",
	"related articles",
	"related stories",
	"recommended for you",
	"read more:",
	"skip advertisement",
	"continue reading the main story",
	"all rights reserved",
	"copyright ©",
}

// DefaultMarkers are whole-block markers. A block whose entire text equals
// one of them, case-insensitively, is dropped.
var DefaultMarkers = []string{
	"advertisement",
	"ad",
	"sponsored",
	"share",
	"related",
}

// Sanitizer removes boilerplate blocks and list items. It is safe for
// concurrent use.
type Sanitizer struct {
	phrases []string
	markers map[string]bool
	matcher *ahocorasick.Matcher
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithPhrases adds denylist phrases.
func WithPhrases(phrases ...string) Option {
	return func(s *Sanitizer) {
		s.phrases = append(s.phrases, phrases...)
	}
}

// NewSanitizer builds the matcher from DefaultPhrases plus any extra phrases.
func NewSanitizer(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		phrases: append([]string(nil), DefaultPhrases...),
		markers: make(map[string]bool, len(DefaultMarkers)),
	}
	for _, opt := range opts {
		opt(s)
	}

	var dictionary []string
	for _, p := range s.phrases {
		if p = strings.ToLower(speakloud.NormalizeSpace(p)); p != "" {
			dictionary = append(dictionary, p)
		}
	}
	s.matcher = ahocorasick.NewStringMatcher(dictionary)

	for _, m := range DefaultMarkers {
		s.markers[m] = true
	}
	return s
}

// Sanitize drops boilerplate from blocks. Paragraphs, headings and quotes
// are dropped whole; list items are dropped one by one and an emptied list
// is dropped. Kept text is whitespace-normalized. The returned text joins
// the kept blocks with blank lines.
func (s *Sanitizer) Sanitize(blocks []speakloud.Block) (string, []speakloud.Block) {
	kept := make([]speakloud.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == speakloud.BlockList {
			var items []string
			for _, item := range b.Items {
				if item = speakloud.NormalizeSpace(item); item != "" && !s.isBoilerplate(item) {
					items = append(items, item)
				}
			}
			if len(items) == 0 {
				continue
			}
			b.Items = items
			kept = append(kept, b)
			continue
		}

		b.Text = speakloud.NormalizeSpace(b.Text)
		if b.Text == "" || s.isBoilerplate(b.Text) {
			continue
		}
		kept = append(kept, b)
	}
	return speakloud.JoinBlocks(kept), kept
}

func (s *Sanitizer) isBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	if s.markers[strings.Trim(lower, " .:!")] {
		return true
	}
	return len(s.matcher.MatchThreadSafe([]byte(lower))) > 0
}
