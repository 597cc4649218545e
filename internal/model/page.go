package model

// UnknownDepth marks a page whose crawl depth was not reported by the engine.
const UnknownDepth = -1

// PageResult is one page's fetch outcome as delivered by the crawl engine.
// It is immutable once received: the result-processing pipeline reads it
// but never mutates it.
//
// Design decision: The engine boundary decides the shape once. Fields that
// the engine may not populate use explicit zero-value conventions
// (StatusCode 0 = no HTTP response, UnknownDepth = depth not reported)
// rather than duck-typed re-inspection at each use site.
type PageResult struct {
	// URL is the full URL of the fetched page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	// 0 means no HTTP response was observed (e.g., transport failure).
	StatusCode int `json:"status_code,omitempty"`

	// Markdown is the page content rendered as Markdown.
	// Preferred over Text when both are set.
	Markdown string `json:"markdown,omitempty"`

	// Text is the page content as plain extracted text.
	// Used when no Markdown rendering is available.
	Text string `json:"text,omitempty"`

	// Depth is the BFS depth at which the page was discovered.
	// The start page has depth 0. UnknownDepth when not reported.
	Depth int `json:"depth"`
}

// Content returns the renderable content of the page: Markdown when
// present, otherwise Text. Empty string means the page carried no content.
func (p PageResult) Content() string {
	if p.Markdown != "" {
		return p.Markdown
	}
	return p.Text
}

// HasStatus reports whether an HTTP status code was observed for the page.
func (p PageResult) HasStatus() bool {
	return p.StatusCode != 0
}
