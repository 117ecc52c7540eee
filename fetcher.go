package speakloud

import "context"

// FetchResult holds a fetched HTML document and its response metadata.
type FetchResult struct {
	HTML          string
	StatusCode    int
	ContentType   string
	ContentLength int64
	LastModified  string
	ETag          string

	// CanonicalURL is the final URL after following redirects.
	CanonicalURL string

	// Warnings lists non-fatal anomalies, such as a suspiciously small body.
	Warnings []string
}

// Fetcher retrieves raw HTML for a URL.
type Fetcher interface {
	// Fetch performs a single request for the URL. It returns EFETCH on
	// network failure, a non-2xx status, or a non-HTML content type.
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Renderer retrieves HTML after executing the page's JavaScript.
// Implementations use browser automation and are expensive to call.
type Renderer interface {
	// Render navigates to the URL, waits for it to load, and returns
	// the rendered HTML. The context controls timeout and cancellation.
	Render(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	Close() error
}

// Cleaner strips boilerplate elements from an HTML document.
type Cleaner interface {
	// Clean returns the reduced document. It never fails; if the input
	// cannot be parsed it is returned unchanged.
	Clean(html string) string
}

// DomainLimiter provides per-domain rate limiting for outbound requests.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
