package goquery

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/fwojciec/speakloud"
)

var _ speakloud.MetadataResolver = (*MetadataResolver)(nil)

// articleTypes are the JSON-LD types treated as article descriptions.
var articleTypes = map[string]bool{
	"Article":              true,
	"NewsArticle":          true,
	"BlogPosting":          true,
	"ReportageNewsArticle": true,
	"AnalysisNewsArticle":  true,
	"OpinionNewsArticle":   true,
}

// MetadataResolver reads article metadata from JSON-LD and meta tags.
type MetadataResolver struct{}

// NewMetadataResolver creates a new MetadataResolver.
func NewMetadataResolver() *MetadataResolver {
	return &MetadataResolver{}
}

// Resolve returns metadata for the page. Values set by winner take
// precedence; JSON-LD fills empty fields before meta tags do.
func (r *MetadataResolver) Resolve(html, pageURL string, winner *speakloud.Candidate) speakloud.Metadata {
	var m speakloud.Metadata
	base, _ := url.Parse(pageURL)
	if base != nil {
		m.Domain = strings.ToLower(base.Hostname())
		m.CanonicalURL = pageURL
	}
	if winner != nil {
		m.Title = strings.TrimSpace(winner.Title)
		m.Author = strings.TrimSpace(winner.Author)
		m.PublishDate = winner.PublishDate
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		m.PublishDate = NormalizeDate(m.PublishDate)
		return m
	}

	ld := findArticleLD(doc)

	pageTitle := speakloud.NormalizeSpace(doc.Find("title").First().Text())

	fill(&m.Title, ld.Headline, meta(doc, "property", "og:title"), meta(doc, "name", "twitter:title"), pageTitle)
	fill(&m.Author, ld.Author, meta(doc, "name", "author"), meta(doc, "property", "article:author"))
	fill(&m.PublishDate, ld.DatePublished, meta(doc, "property", "article:published_time"), meta(doc, "name", "publish_date"), meta(doc, "name", "date"))
	fill(&m.Section, ld.Section, meta(doc, "property", "article:section"))
	fill(&m.Description, ld.Description, meta(doc, "name", "description"), meta(doc, "property", "og:description"))
	fill(&m.ImageURL, ld.Image, meta(doc, "property", "og:image"))
	fill(&m.Publisher, ld.Publisher, meta(doc, "property", "og:site_name"), meta(doc, "name", "publisher"), titlePrefix(pageTitle))

	m.PublishDate = NormalizeDate(m.PublishDate)
	m.ImageURL = resolve(base, m.ImageURL)

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		m.CanonicalURL = resolve(base, strings.TrimSpace(href))
	}
	m.FaviconURL = favicon(doc, base)

	keywords := ld.Keywords
	if len(keywords) == 0 {
		keywords = splitKeywords(meta(doc, "name", "keywords"))
	}
	m.Tags = keywords

	return m
}

// NormalizeDate parses s leniently and formats it with speakloud.DateLayout.
// Unparseable input yields "". Dates without a zone are read as UTC.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return ""
	}
	return t.Format(speakloud.DateLayout)
}

func fill(dst *string, values ...string) {
	if strings.TrimSpace(*dst) != "" {
		return
	}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
			return
		}
	}
}

func meta(doc *goquery.Document, attr, value string) string {
	var content string
	doc.Find("meta[" + attr + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, _ := s.Attr(attr); !strings.EqualFold(v, value) {
			return true
		}
		content, _ = s.Attr("content")
		content = strings.TrimSpace(content)
		return content == ""
	})
	return content
}

// titlePrefix returns the site name part of a "Site – Headline" or
// "Site | Headline" page title.
func titlePrefix(title string) string {
	for _, sep := range []string{"–", " | "} {
		if prefix, _, ok := strings.Cut(title, sep); ok {
			return strings.TrimSpace(prefix)
		}
	}
	return ""
}

func favicon(doc *goquery.Document, base *url.URL) string {
	var href string
	doc.Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "icon") {
			return true
		}
		href, _ = s.Attr("href")
		href = strings.TrimSpace(href)
		return href == ""
	})
	return resolve(base, href)
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// articleLD holds the JSON-LD fields the resolver uses.
type articleLD struct {
	Headline      string
	Author        string
	DatePublished string
	Section       string
	Description   string
	Image         string
	Publisher     string
	Keywords      []string
}

// findArticleLD returns the first JSON-LD object typed as an article. Objects
// without an article type are used only when no typed object has a headline.
func findArticleLD(doc *goquery.Document) articleLD {
	var typed, untyped map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if typed != nil {
			return
		}
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		for _, obj := range ldObjects(data) {
			if isArticle(obj["@type"]) {
				typed = obj
				return
			}
			if untyped == nil && str(obj["headline"]) != "" {
				untyped = obj
			}
		}
	})

	obj := typed
	if obj == nil {
		obj = untyped
	}
	if obj == nil {
		return articleLD{}
	}

	ld := articleLD{
		Headline:      str(obj["headline"]),
		Author:        names(obj["author"]),
		DatePublished: str(obj["datePublished"]),
		Section:       first(obj["articleSection"]),
		Description:   str(obj["description"]),
		Image:         image(obj["image"]),
		Publisher:     names(obj["publisher"]),
	}
	switch kw := obj["keywords"].(type) {
	case string:
		ld.Keywords = splitKeywords(kw)
	case []any:
		for _, k := range kw {
			if s := strings.TrimSpace(str(k)); s != "" {
				ld.Keywords = append(ld.Keywords, s)
			}
		}
	}
	return ld
}

// ldObjects flattens top-level arrays and @graph containers.
func ldObjects(data any) []map[string]any {
	var out []map[string]any
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			out = append(out, ldObjects(item)...)
		}
	case map[string]any:
		out = append(out, v)
		if graph, ok := v["@graph"]; ok {
			out = append(out, ldObjects(graph)...)
		}
	}
	return out
}

func isArticle(t any) bool {
	switch v := t.(type) {
	case string:
		return articleTypes[v]
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func first(v any) string {
	if arr, ok := v.([]any); ok {
		for _, item := range arr {
			if s := str(item); s != "" {
				return s
			}
		}
		return ""
	}
	return str(v)
}

// names reads a string, a {"name": ...} object or an array of either,
// joining multiple names with ", ".
func names(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		return str(x["name"])
	case []any:
		var parts []string
		for _, item := range x {
			if n := names(item); n != "" {
				parts = append(parts, n)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func image(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		return str(x["url"])
	case []any:
		for _, item := range x {
			if s := image(item); s != "" {
				return s
			}
		}
	}
	return ""
}
