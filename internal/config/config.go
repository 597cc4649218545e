package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The crawl defaults mirror the `crawl`
// tool's argument defaults so the CLI and the tool surface behave the same.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "crawlmd"

	// DefaultMaxDepth bounds link-following from the start page.
	// Depth 2 covers the start page, its links, and their links, which
	// keeps default crawls fast on typical sites.
	DefaultMaxDepth = 2

	// DefaultIncludeExternal keeps crawls on the target host unless the
	// caller opts in to following external links.
	DefaultIncludeExternal = false

	// DefaultVerbose enables per-visit progress logging for tool
	// invocations, matching the tool surface's documented default.
	DefaultVerbose = true

	// DefaultMaxPages bounds a single crawl. This prevents runaway
	// crawling on large or infinitely-generating sites.
	DefaultMaxPages = 100

	// DefaultRequestsPerSecond is the politeness rate limit for the
	// built-in engine.
	DefaultRequestsPerSecond = 2.0

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultServePort is the SSE listen port of the tool server.
	DefaultServePort = 8000

	// DefaultTransport is the tool server transport.
	DefaultTransport = "stdio"

	// DefaultStrategy is the extraction strategy applied to pages.
	DefaultStrategy = "markdown"

	// DefaultBatch is the number of concurrent crawls when the CLI is
	// given multiple URLs.
	DefaultBatch = 4
)

// Transport names accepted by the serve command.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config holds all configuration options for crawlmd.
// It is populated from defaults, the optional .crawlmd file, and CLI
// flags, then passed through the application via dependency injection
// rather than global state.
type Config struct {
	// MaxDepth is the default maximum crawl depth.
	MaxDepth int

	// IncludeExternal is the default external-link policy.
	IncludeExternal bool

	// Verbose enables detailed progress logging (slog.LevelDebug).
	Verbose bool

	// MaxPages bounds pages fetched per crawl invocation.
	MaxPages int

	// RequestsPerSecond is the engine's politeness rate limit.
	RequestsPerSecond float64

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UserAgent overrides the engine's User-Agent header when non-empty.
	UserAgent string

	// RespectRobots controls robots.txt enforcement.
	RespectRobots bool

	// Strategy is the extraction strategy name ("markdown" or "text").
	Strategy string

	// ResultsDir is where default-named report artifacts are written.
	// Resolved once at startup; never discovered lazily.
	ResultsDir string

	// History enables recording crawl outcomes to the history database.
	History bool

	// DataDir is the directory holding the history database.
	DataDir string

	// Transport is the tool server transport ("stdio" or "sse").
	Transport string

	// Port is the SSE listen port.
	Port int
}

// NewConfig returns a Config populated with defaults. The results and
// data directories live under the user's XDG data directory.
func NewConfig() *Config {
	return &Config{
		MaxDepth:          DefaultMaxDepth,
		IncludeExternal:   DefaultIncludeExternal,
		Verbose:           DefaultVerbose,
		MaxPages:          DefaultMaxPages,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Timeout:           DefaultTimeout,
		RespectRobots:     true,
		Strategy:          DefaultStrategy,
		ResultsDir:        DefaultResultsDir(),
		History:           true,
		DataDir:           XDGDataDir(),
		Transport:         DefaultTransport,
		Port:              DefaultServePort,
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRate
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Strategy != "markdown" && c.Strategy != "text" {
		return ErrInvalidStrategy
	}
	if c.Transport != TransportStdio && c.Transport != TransportSSE {
		return ErrInvalidTransport
	}
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// XDGDataDir returns the default data directory for crawlmd.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultResultsDir returns the default directory for report artifacts.
func DefaultResultsDir() string {
	return filepath.Join(xdg.DataHome, AppName, "results")
}
