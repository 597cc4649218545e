// Package log provides structured logging helpers for crawlmd.
//
// Crawled sites carry arbitrary international text; URLs, titles, and
// error strings flow into log attributes. ASCIIHandler keeps log output in
// the same safe output encoding as report artifacts by passing every
// message and string attribute through the sanitizer.
package log
