package speakloud

// Page is a fetched and cleaned HTML document handed to extraction
// strategies.
type Page struct {
	URL  string
	HTML string
}
