package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crawlmd/crawlmd/internal/crawl"
	"github.com/crawlmd/crawlmd/internal/model"
	"github.com/crawlmd/crawlmd/internal/sanitize"
)

// ErrMissingURL is returned when a crawl invocation omits the url argument.
var ErrMissingURL = errors.New("missing required argument 'url'")

// Runner executes one crawl invocation. *crawl.Orchestrator satisfies it;
// tests substitute a scripted implementation.
type Runner interface {
	Run(ctx context.Context, req crawl.Request) model.CrawlOutcome
}

// Args carries the crawl tool arguments after transport decoding. Transport
// defaults are applied before the struct reaches Crawl.
type Args struct {
	URL             string
	MaxDepth        int
	IncludeExternal bool
	Verbose         bool
	OutputFile      string
	Strategy        string
}

// Adapter bridges decoded tool calls to the crawl orchestrator.
type Adapter struct {
	runner Runner
	logger *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithAdapterLogger sets a custom logger.
func WithAdapterLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter creates an Adapter driving the given runner.
func NewAdapter(runner Runner, opts ...AdapterOption) *Adapter {
	a := &Adapter{runner: runner}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Crawl runs one invocation and renders its outcome as tool text.
// A missing URL is the only argument error; every domain failure comes
// back as an "Error: ..." text result so the protocol call itself still
// succeeds.
func (a *Adapter) Crawl(ctx context.Context, args Args) (string, error) {
	if args.URL == "" {
		return "", ErrMissingURL
	}

	outcome := a.runner.Run(ctx, crawl.Request{
		URL:             args.URL,
		MaxDepth:        args.MaxDepth,
		IncludeExternal: args.IncludeExternal,
		Verbose:         args.Verbose,
		OutputFile:      args.OutputFile,
		Strategy:        args.Strategy,
	})

	if outcome.Failed() {
		a.logger.Error("crawl tool invocation failed", "url", args.URL, "error", outcome.Err)
		return "Error: " + sanitize.Text(outcome.Err), nil
	}

	return formatSummary(args.URL, outcome), nil
}

// formatSummary renders the success message returned to the tool caller.
func formatSummary(url string, outcome model.CrawlOutcome) string {
	s := outcome.Stats
	return fmt.Sprintf(`## Crawl completed successfully
- URL: %s
- Result file: %s
- Duration: %.2f seconds
- Pages processed: %d successful, %d failed, %d not found (404), %d access forbidden (403)

You can view the results in the file: %s
`,
		sanitize.Text(url),
		outcome.FilePath,
		s.DurationSeconds,
		s.SuccessfulPages,
		s.FailedPages,
		s.NotFoundPages,
		s.ForbiddenPages,
		outcome.FilePath,
	)
}
