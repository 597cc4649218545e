// Package tool exposes crawling over the Model Context Protocol.
//
// The package has two layers. Adapter translates between decoded tool
// arguments and the crawl orchestrator, formatting every domain failure
// as plain text so callers never see a protocol fault for a failed
// crawl. NewServer wires the adapter into an MCP server with a single
// "crawl" tool, servable over stdio or SSE.
package tool
