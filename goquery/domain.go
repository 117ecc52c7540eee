package goquery

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/speakloud"
	"gopkg.in/yaml.v3"
)

var _ speakloud.Extractor = (*DomainExtractor)(nil)

// DefaultSelectors maps known news domains to the CSS selector of their
// article body.
var DefaultSelectors = map[string]string{
	"nytimes.com":        "section[name=articleBody]",
	"theguardian.com":    "div[data-gu-name=body], div.article-body-commercial-selector",
	"washingtonpost.com": "div.article-body, div[data-qa=article-body]",
	"bbc.com":            "article",
	"bbc.co.uk":          "article",
	"cnn.com":            "div.article__content",
	"reuters.com":        "div[data-testid=ArticleBody]",
	"apnews.com":         "div.RichTextStoryBody",
	"npr.org":            "div#storytext",
	"theatlantic.com":    "section[data-event-module=article body], div.article-body",
	"newyorker.com":      "div.body__inner-container",
	"wired.com":          "div.body__inner-container",
	"medium.com":         "article",
	"substack.com":       "div.available-content",
}

// DomainExtractor extracts paragraphs from the subtree matched by a
// per-domain CSS selector.
type DomainExtractor struct {
	selectors map[string]string
}

// DomainOption configures a DomainExtractor.
type DomainOption func(*DomainExtractor)

// WithSelectors adds or replaces domain selectors.
func WithSelectors(selectors map[string]string) DomainOption {
	return func(e *DomainExtractor) {
		for domain, sel := range selectors {
			e.selectors[speakloud.NormalizeHost(domain)] = sel
		}
	}
}

// NewDomainExtractor creates a DomainExtractor seeded with DefaultSelectors.
func NewDomainExtractor(opts ...DomainOption) *DomainExtractor {
	e := &DomainExtractor{selectors: maps.Clone(DefaultSelectors)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadSelectors reads a YAML mapping of domain to CSS selector.
func LoadSelectors(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selectors: %w", err)
	}
	var selectors map[string]string
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return nil, speakloud.Errorf(speakloud.EINVALID, "invalid selectors file %s: %v", path, err)
	}
	return selectors, nil
}

// Name returns the strategy identifier.
func (e *DomainExtractor) Name() string {
	return speakloud.StrategyDomain
}

// Selector returns the selector registered for host or its nearest parent
// domain.
func (e *DomainExtractor) Selector(host string) (string, bool) {
	host = speakloud.NormalizeHost(host)
	for host != "" {
		if sel, ok := e.selectors[host]; ok {
			return sel, true
		}
		_, parent, ok := strings.Cut(host, ".")
		if !ok || !strings.Contains(parent, ".") {
			break
		}
		host = parent
	}
	return "", false
}

// Extract returns the paragraphs inside the domain's article subtree.
func (e *DomainExtractor) Extract(_ context.Context, page *speakloud.Page) speakloud.Outcome {
	u, err := url.Parse(page.URL)
	if err != nil {
		return speakloud.Decline("invalid URL: %v", err)
	}
	sel, ok := e.Selector(u.Hostname())
	if !ok {
		return speakloud.Decline("no selector for %s", u.Hostname())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return speakloud.Decline("failed to parse HTML: %v", err)
	}

	match := doc.Find(sel).First()
	if match.Length() == 0 {
		return speakloud.Decline("selector %q matched nothing", sel)
	}

	var blocks []speakloud.Block
	match.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := speakloud.NormalizeSpace(p.Text()); text != "" {
			blocks = append(blocks, speakloud.Block{Type: speakloud.BlockParagraph, Text: text})
		}
	})
	if len(blocks) == 0 {
		return speakloud.Decline("selector %q matched no paragraphs", sel)
	}

	return speakloud.Accept(&speakloud.Candidate{
		Source: e.Name(),
		Text:   speakloud.JoinBlocks(blocks),
		Blocks: blocks,
	})
}
