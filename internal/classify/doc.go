// Package classify assigns exactly one classification to each page result
// returned by the crawl engine.
//
// Status codes are authoritative; content-based detection is a fallback for
// engines that return a 200-style response carrying an error page body.
// The decision order is therefore significant and must not be reordered.
package classify
