// Package main provides the entry point for the crawlmd CLI.
//
// crawlmd crawls websites and saves their content as structured markdown.
// It can run as a one-shot command line tool or serve the crawl capability
// to MCP clients over stdio or SSE.
//
// Usage:
//
//	crawlmd crawl <url>
//	crawlmd serve --transport stdio
//
// See --help for all available options.
package main

// main is the entry point for crawlmd.
func main() {
	Execute()
}
