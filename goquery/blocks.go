package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/speakloud"
)

// inlineTags contribute their text to the surrounding paragraph.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true,
	"em": true, "i": true, "mark": true, "q": true, "s": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true,
	"time": true, "u": true,
}

// skippedTags never contribute text.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"figure": true, "figcaption": true, "img": true, "picture": true,
	"#comment": true,
}

// BlocksFromHTML parses html and builds typed blocks from its body.
func BlocksFromHTML(html string) ([]speakloud.Block, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, speakloud.Errorf(speakloud.EEXTRACT, "failed to parse HTML: %v", err)
	}
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return Blocks(root), nil
}

// Blocks walks the selection in document order and returns its headings,
// paragraphs, lists and block quotes. Loose inline text between block
// elements becomes a paragraph.
func Blocks(s *goquery.Selection) []speakloud.Block {
	b := &blockBuilder{}
	b.walk(s)
	b.flush()
	return b.blocks
}

type blockBuilder struct {
	blocks []speakloud.Block
	inline strings.Builder
}

func (b *blockBuilder) walk(s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text" || inlineTags[name]:
			b.inline.WriteString(c.Text())
		case skippedTags[name]:
		case name == "br":
			b.flush()
		case len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6':
			b.flush()
			b.add(speakloud.Block{Type: speakloud.BlockHeading, Level: int(name[1] - '0'), Text: speakloud.NormalizeSpace(c.Text())})
		case name == "p" || name == "pre":
			b.flush()
			b.add(speakloud.Block{Type: speakloud.BlockParagraph, Text: speakloud.NormalizeSpace(c.Text())})
		case name == "ul" || name == "ol":
			b.flush()
			var items []string
			c.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				if text := speakloud.NormalizeSpace(li.Text()); text != "" {
					items = append(items, text)
				}
			})
			b.add(speakloud.Block{Type: speakloud.BlockList, Ordered: name == "ol", Items: items})
		case name == "blockquote":
			b.flush()
			b.add(speakloud.Block{Type: speakloud.BlockQuote, Text: speakloud.NormalizeSpace(c.Text())})
		default:
			b.flush()
			b.walk(c)
			b.flush()
		}
	})
}

func (b *blockBuilder) add(block speakloud.Block) {
	if !block.IsEmpty() {
		b.blocks = append(b.blocks, block)
	}
}

func (b *blockBuilder) flush() {
	text := speakloud.NormalizeSpace(b.inline.String())
	b.inline.Reset()
	b.add(speakloud.Block{Type: speakloud.BlockParagraph, Text: text})
}
