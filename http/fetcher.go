// Package http provides an HTTP implementation of speakloud.Fetcher for
// retrieving article pages without executing JavaScript.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/speakloud"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for a single request.
const DefaultFetchTimeout = 20 * time.Second

// MaxBodySize is the largest response body read, in bytes. Longer bodies
// are truncated.
const MaxBodySize = 10 << 20

// MinBodySize is the body size below which a warning is recorded.
const MinBodySize = 1 << 10

// UserAgents is the pool a request's User-Agent is drawn from.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

// Ensure Fetcher implements speakloud.Fetcher at compile time.
var _ speakloud.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML documents with a single GET request. Unlike
// rod.Renderer, it does not execute JavaScript.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	limiter    speakloud.DomainLimiter
	userAgents []string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithLimiter enables per-domain rate limiting.
func WithLimiter(l speakloud.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithUserAgents replaces the User-Agent pool.
func WithUserAgents(agents []string) Option {
	return func(f *Fetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:    DefaultFetchTimeout,
		userAgents: UserAgents,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML document at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*speakloud.FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, speakloud.Errorf(speakloud.EFETCH, "invalid URL %q", rawURL)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, speakloud.Errorf(speakloud.EFETCH, "rate limit wait: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, speakloud.Errorf(speakloud.EFETCH, "building request: %v", err)
	}
	req.Header.Set("User-Agent", f.userAgents[rand.IntN(len(f.userAgents))])
	req.Header.Set("Referer", u.Scheme+"://"+u.Host+"/")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, speakloud.Errorf(speakloud.EFETCH, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, speakloud.Errorf(speakloud.EFETCH, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, speakloud.Errorf(speakloud.EFETCH, "unsupported content type %q", contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, speakloud.Errorf(speakloud.EFETCH, "reading body: %v", err)
	}

	var warnings []string
	if len(raw) > MaxBodySize {
		raw = raw[:MaxBodySize]
		warnings = append(warnings, fmt.Sprintf("body truncated to %d bytes", MaxBodySize))
	}
	if len(raw) < MinBodySize {
		warnings = append(warnings, fmt.Sprintf("suspiciously small body: %d bytes", len(raw)))
	}

	body, err := decode(raw, contentType)
	if err != nil {
		return nil, speakloud.Errorf(speakloud.EFETCH, "decoding body: %v", err)
	}

	length := resp.ContentLength
	if length < 0 {
		length = int64(len(raw))
	}

	return &speakloud.FetchResult{
		HTML:          body,
		StatusCode:    resp.StatusCode,
		ContentType:   contentType,
		ContentLength: length,
		LastModified:  resp.Header.Get("Last-Modified"),
		ETag:          resp.Header.Get("ETag"),
		CanonicalURL:  resp.Request.URL.String(),
		Warnings:      warnings,
	}, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// decode converts the body to UTF-8 using the declared or sniffed charset.
func decode(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
