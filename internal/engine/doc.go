// Package engine defines the crawl engine boundary consumed by the
// orchestrator and provides the built-in HTTP spider implementation.
//
// # Architecture
//
// The orchestrator talks to an Engine, which opens a Session per crawl
// invocation. A Session runs one breadth-first crawl bounded by depth and
// page limits, emits progress events while running, and returns the final
// ordered list of page results. The engine may parallelize internally;
// that concurrency never leaks past the Session boundary.
//
// # Politeness
//
// The built-in spider is designed to be polite:
//   - Respects robots.txt (configurable)
//   - Rate-limits requests per second
//   - Respects max depth and max page settings
//   - Limits response body sizes
package engine
