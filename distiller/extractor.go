// Package distiller implements the article-heuristic extraction strategy
// with github.com/markusmobius/go-domdistiller, a port of Chrome's DOM
// Distiller.
package distiller

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/speakloud"
	"github.com/fwojciec/speakloud/goquery"
	distiller "github.com/markusmobius/go-domdistiller"
	"golang.org/x/net/html"
)

// Ensure Extractor implements speakloud.Extractor at compile time.
var _ speakloud.Extractor = (*Extractor)(nil)

// Extractor distills the article body and guesses title, author and
// publish date from the page markup.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Name returns the strategy identifier.
func (e *Extractor) Name() string {
	return speakloud.StrategyDistiller
}

// Extract processes cleaned HTML and returns the distilled article.
func (e *Extractor) Extract(_ context.Context, page *speakloud.Page) speakloud.Outcome {
	if strings.TrimSpace(page.HTML) == "" {
		return speakloud.Decline("empty HTML input")
	}

	opts := &distiller.Options{}
	if u, err := url.Parse(page.URL); err == nil {
		opts.OriginalURL = u
	}

	result, err := distiller.ApplyForReader(strings.NewReader(page.HTML), opts)
	if err != nil {
		return speakloud.Decline("distiller: %v", err)
	}
	if result == nil || result.Node == nil {
		return speakloud.Decline("no content found")
	}

	content, err := renderNode(result.Node)
	if err != nil {
		return speakloud.Decline("rendering distilled content: %v", err)
	}

	blocks, err := goquery.BlocksFromHTML(content)
	if err != nil || len(blocks) == 0 {
		return speakloud.Decline("no content found")
	}

	markup := result.MarkupInfo
	author := strings.TrimSpace(markup.Author)
	if author == "" {
		author = strings.Join(markup.Article.Authors, ", ")
	}

	return speakloud.Accept(&speakloud.Candidate{
		Source:      e.Name(),
		Text:        speakloud.JoinBlocks(blocks),
		Blocks:      blocks,
		Title:       strings.TrimSpace(result.Title),
		Author:      author,
		PublishDate: goquery.NormalizeDate(markup.Article.PublishedTime),
	})
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
