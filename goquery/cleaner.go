// Package goquery implements HTML processing with github.com/PuerkitoBio/goquery:
// boilerplate cleaning, structured block building, the per-domain selector
// strategy, and metadata resolution.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/speakloud"
)

var _ speakloud.Cleaner = (*Cleaner)(nil)

// noiseTags are removed wholesale before any strategy runs.
const noiseTags = "script, style, noscript, nav, footer, aside, form, iframe, svg, button, template"

// noisePattern matches class and id values of ad, consent and promo widgets.
// Words must stand alone or between hyphens, underscores or spaces, so
// "share-tools" matches and "shareable-content" does not.
var noisePattern = regexp.MustCompile(`(?i)(^|[\s_-])(ads?|advert\w*|sponsor\w*|outbrain|taboola|cookies?|consent|popup|banner|newsletter|share|sharing|social|promo|subscribe|subscription|modal|paywall)($|[\s_-])`)

// protectedTags are never removed by class or id patterns.
var protectedTags = map[string]bool{
	"html":    true,
	"body":    true,
	"main":    true,
	"article": true,
}

// Cleaner strips non-article elements from HTML so every strategy sees the
// same reduced document.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean returns html with noise elements removed. Unparseable input is
// returned unchanged.
func (c *Cleaner) Clean(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find(noiseTags).Remove()

	// An element holding at least half of the paragraphs is the article
	// itself, whatever its class says.
	paragraphs := doc.Find("p").Length()
	holdsArticle := func(s *goquery.Selection) bool {
		return paragraphs > 0 && 2*s.Find("p").Length() >= paragraphs
	}

	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		if protectedTags[goquery.NodeName(s)] {
			return
		}
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if !noisePattern.MatchString(class) && !noisePattern.MatchString(id) {
			return
		}
		if holdsArticle(s) {
			return
		}
		s.Remove()
	})

	out, err := doc.Html()
	if err != nil {
		return html
	}
	return out
}
