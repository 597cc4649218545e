package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidMaxDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means only the start page.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	// A cap of zero would make every crawl empty.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidRate is returned when the request rate is not positive.
	ErrInvalidRate = errors.New("invalid requests per second: must be positive")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidStrategy is returned for unknown extraction strategies.
	ErrInvalidStrategy = errors.New(`invalid strategy: must be "markdown" or "text"`)

	// ErrInvalidTransport is returned for unknown server transports.
	ErrInvalidTransport = errors.New(`invalid transport: must be "stdio" or "sse"`)

	// ErrInvalidPort is returned when the SSE port is out of range.
	ErrInvalidPort = errors.New("invalid port: must be between 1 and 65535")
)
