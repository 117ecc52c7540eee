package speakloud

import "strings"

// BlockType identifies the kind of a structured content block.
type BlockType string

// Supported block types.
const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockList      BlockType = "list"
	BlockQuote     BlockType = "quote"
)

// Block is one semantically typed unit of article content.
type Block struct {
	Type BlockType `json:"type"`

	// Level is the heading level (1-6). Zero for other block types.
	Level int `json:"level,omitempty"`

	// Ordered reports whether a list is numbered.
	Ordered bool `json:"ordered,omitempty"`

	// Text holds the content of paragraphs, headings and quotes.
	Text string `json:"text,omitempty"`

	// Items holds the entries of a list.
	Items []string `json:"items,omitempty"`
}

// PlainText returns the block's text. List items are joined by newlines.
func (b Block) PlainText() string {
	if b.Type == BlockList {
		return strings.Join(b.Items, "\n")
	}
	return b.Text
}

// IsEmpty reports whether the block carries no text.
func (b Block) IsEmpty() bool {
	return strings.TrimSpace(b.PlainText()) == ""
}

// JoinBlocks concatenates the text of blocks separated by blank lines,
// skipping empty blocks.
func JoinBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.IsEmpty() {
			continue
		}
		parts = append(parts, b.PlainText())
	}
	return strings.Join(parts, "\n\n")
}

// ParagraphBlocks splits flat text into a paragraph sequence. Strategies
// without native structure use it to synthesize blocks. Blank lines and
// single newlines both separate paragraphs.
func ParagraphBlocks(text string) []Block {
	var blocks []Block
	for _, line := range strings.Split(text, "\n") {
		line = NormalizeSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, Block{Type: BlockParagraph, Text: line})
	}
	return blocks
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
// the result.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HasStructure reports whether blocks carry typed structure beyond a flat
// paragraph sequence: at least one heading, list or quote.
func HasStructure(blocks []Block) bool {
	for _, b := range blocks {
		if b.Type != BlockParagraph && !b.IsEmpty() {
			return true
		}
	}
	return false
}
