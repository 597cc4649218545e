package engine

import (
	"context"

	"github.com/crawlmd/crawlmd/internal/model"
)

// Engine creates crawl sessions. Implementations must be safe for
// concurrent Open calls: each session is independent and owns its state.
type Engine interface {
	// Open acquires a session for one crawl invocation. The caller must
	// Close the session on every exit path.
	Open(ctx context.Context) (Session, error)
}

// Session runs a single crawl and owns its traversal state.
type Session interface {
	// Run crawls breadth-first from startURL and returns the final
	// ordered list of page results. Progress events are sent on
	// opts.Events while Run is executing; no event is sent after Run
	// returns. The caller owns the channel and closes it after Run.
	Run(ctx context.Context, startURL string, opts RunOptions) ([]model.PageResult, error)

	// Close releases the session's resources.
	Close() error
}

// RunOptions bounds one crawl run.
type RunOptions struct {
	// MaxDepth limits link-following from the start page. 0 means only
	// the start page.
	MaxDepth int

	// IncludeExternal allows following links to other hosts.
	IncludeExternal bool

	// Extractor is the scraping strategy applied to fetched pages.
	// Defaults to MarkdownExtractor when nil.
	Extractor Extractor

	// Events receives progress events during the run. May be nil when
	// the caller does not observe progress. The session sends on this
	// channel and may block until the caller drains it.
	Events chan<- ProgressEvent
}
