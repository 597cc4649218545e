package engine

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Extractor is the scraping strategy applied to a fetched page body.
// It turns raw bytes into renderable content for the report pipeline and
// discovers the links used to continue the traversal.
type Extractor interface {
	// Name identifies the strategy for logging and configuration.
	Name() string

	// Extract produces content and outgoing links from a response body.
	// pageURL is the fetched URL, used to resolve relative links.
	Extract(pageURL string, body []byte, contentType string) (Extraction, error)
}

// Extraction is the result of applying an Extractor to one page.
type Extraction struct {
	// Markdown is the page content rendered as Markdown. Set by
	// markdown-producing strategies.
	Markdown string

	// Text is the page content as plain text. Set by text strategies and
	// for non-HTML textual bodies.
	Text string

	// Links are absolute URLs discovered on the page.
	Links []string
}

// Strategy names accepted by ExtractorByName.
const (
	StrategyMarkdown = "markdown"
	StrategyText     = "text"
)

// ExtractorByName returns the extractor for a strategy name.
// Unknown names fall back to the markdown strategy.
func ExtractorByName(name string) Extractor {
	if name == StrategyText {
		return TextExtractor{}
	}
	return MarkdownExtractor{}
}

// MarkdownExtractor renders HTML pages as Markdown: headings map to #
// prefixes, list items to bullets, and anchors to inline links.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because it correctly handles the malformed HTML common on the web
// and gives us a proper tree to walk.
type MarkdownExtractor struct{}

// Name returns the strategy name.
func (MarkdownExtractor) Name() string { return StrategyMarkdown }

// Extract implements Extractor.
func (e MarkdownExtractor) Extract(pageURL string, body []byte, contentType string) (Extraction, error) {
	if !isHTML(contentType) {
		return nonHTMLExtraction(body, contentType), nil
	}

	doc, base, err := parsePage(pageURL, body)
	if err != nil {
		return Extraction{}, err
	}

	var sb strings.Builder
	var links []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				level := int(n.Data[1] - '0')
				writeBlock(&sb, strings.Repeat("#", level)+" "+inlineText(n, base, &links))
				return
			case "p", "blockquote", "pre", "td", "th":
				if text := inlineText(n, base, &links); text != "" {
					writeBlock(&sb, text)
				}
				return
			case "li":
				if text := inlineText(n, base, &links); text != "" {
					writeBlock(&sb, "- "+text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	md := strings.TrimSpace(sb.String())
	if md == "" {
		// Pages without block structure still get their bare text.
		md = inlineText(doc, base, &links)
	}

	return Extraction{Markdown: md, Links: links}, nil
}

// TextExtractor produces plain text without Markdown structure.
type TextExtractor struct{}

// Name returns the strategy name.
func (TextExtractor) Name() string { return StrategyText }

// Extract implements Extractor.
func (e TextExtractor) Extract(pageURL string, body []byte, contentType string) (Extraction, error) {
	if !isHTML(contentType) {
		return nonHTMLExtraction(body, contentType), nil
	}

	doc, base, err := parsePage(pageURL, body)
	if err != nil {
		return Extraction{}, err
	}

	var sb strings.Builder
	var links []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				return
			case "a":
				if link := resolveRef(base, attr(n, "href")); link != "" {
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return Extraction{Text: strings.TrimSpace(sb.String()), Links: links}, nil
}

// parsePage parses an HTML body and the page URL it came from.
func parsePage(pageURL string, body []byte) (*html.Node, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse HTML: %w", err)
	}

	return doc, base, nil
}

// nonHTMLExtraction handles textual non-HTML bodies. Binary bodies carry
// nothing renderable and yield an empty extraction.
func nonHTMLExtraction(body []byte, contentType string) Extraction {
	if contentType == "" || strings.HasPrefix(contentType, "text/") {
		return Extraction{Text: strings.TrimSpace(string(body))}
	}
	return Extraction{}
}

// inlineText renders the inline content of a node: child text joined with
// normalized whitespace, anchors rendered as Markdown links and recorded
// in links.
func inlineText(n *html.Node, base *url.URL, links *[]string) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteString(" ")
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				return
			case "br":
				sb.WriteString(" ")
			case "a":
				var inner strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					collectText(c, &inner)
				}
				text := normalizeSpace(inner.String())
				link := resolveRef(base, attr(n, "href"))
				if link != "" {
					*links = append(*links, link)
				}
				if link != "" && text != "" {
					fmt.Fprintf(&sb, "[%s](%s) ", text, link)
				} else {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return normalizeSpace(sb.String())
}

// collectText gathers raw text content beneath a node.
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// writeBlock appends one block followed by a blank line.
func writeBlock(sb *strings.Builder, block string) {
	sb.WriteString(block)
	sb.WriteString("\n\n")
}

// normalizeSpace collapses all whitespace runs to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// attr returns the value of the named attribute, or empty string.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// resolveRef resolves href against the page URL and filters out references
// that cannot be crawled. Fragments are dropped so that anchor variants of
// the same page deduplicate.
func resolveRef(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""

	return resolved.String()
}

// isHTML reports whether a Content-Type denotes an HTML document.
func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}
