package speakloud

// DateLayout is the format publish dates are normalized to.
const DateLayout = "2006-01-02T15:04:05-07:00"

// Metadata describes an article independently of its body text.
// Absent fields are empty strings.
type Metadata struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	PublishDate  string   `json:"publish_date"`
	FaviconURL   string   `json:"favicon_url"`
	Domain       string   `json:"domain"`
	Publisher    string   `json:"publisher"`
	Section      string   `json:"section"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"image_url"`
	CanonicalURL string   `json:"canonical_url"`
	Tags         []string `json:"tags,omitempty"`
}

// MetadataResolver extracts article metadata from page markup.
type MetadataResolver interface {
	// Resolve reads JSON-LD and meta tags from html and merges them with
	// the values the winning candidate already set. It never fails.
	Resolve(html, pageURL string, winner *Candidate) Metadata
}

// Sanitizer removes residual boilerplate from structured content.
type Sanitizer interface {
	// Sanitize drops blocks and list items matching boilerplate markers and
	// returns the reconstructed plain text along with the kept blocks.
	Sanitize(blocks []Block) (string, []Block)
}
