// Package sanitize maps arbitrary international text onto a safe ASCII
// output encoding for report artifacts and logs.
//
// Known typographic characters (arrows, dashes, curly quotes, ellipsis,
// non-breaking space) are replaced with fixed ASCII equivalents; every
// remaining run of non-ASCII characters collapses to a single space.
// The mapping is total and idempotent.
package sanitize
