// Package report renders classified crawl results into an ordered Markdown
// document, one section per successful page.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Consistent heading, list, and separator formatting
//  3. A single String() rendering that stays stable across calls
package report
