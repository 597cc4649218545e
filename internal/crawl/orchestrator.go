package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crawlmd/crawlmd/internal/classify"
	"github.com/crawlmd/crawlmd/internal/database"
	"github.com/crawlmd/crawlmd/internal/engine"
	"github.com/crawlmd/crawlmd/internal/model"
	"github.com/crawlmd/crawlmd/internal/report"
	"github.com/crawlmd/crawlmd/internal/stats"
)

// Stage tags prefixing the outcome error text. They identify the state in
// which a failed invocation terminated.
const (
	tagInitialization = "Initialization error"
	tagCrawling       = "Crawling error"
	tagWriting        = "Writing error"
)

// eventBuffer sizes the progress channel. The drain goroutine keeps up
// with the engine, so the buffer only smooths bursts.
const eventBuffer = 64

// Request describes one crawl invocation.
type Request struct {
	// URL is the crawl start page.
	URL string

	// MaxDepth bounds link-following from the start page.
	MaxDepth int

	// IncludeExternal allows following links to other hosts.
	IncludeExternal bool

	// Verbose enables per-visit progress logging.
	Verbose bool

	// OutputFile is the report destination. Empty means a default path
	// derived from the target host and a creation timestamp.
	OutputFile string

	// Strategy names the extraction strategy ("markdown" or "text").
	Strategy string
}

// Orchestrator runs crawl invocations against a crawl engine.
// It is safe for concurrent Run calls: per-invocation state (stats,
// report, engine session) is created inside Run and never shared.
type Orchestrator struct {
	engine engine.Engine
	logger *slog.Logger

	// resultsDir is resolved once at construction, not lazily at first
	// use, so every invocation agrees on the default output location.
	resultsDir string

	// history is nil when outcome persistence is disabled.
	history *database.HistoryDB
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithResultsDir sets the directory for default-named report artifacts.
func WithResultsDir(dir string) Option {
	return func(o *Orchestrator) {
		o.resultsDir = dir
	}
}

// WithHistory enables recording crawl outcomes to the history database.
func WithHistory(db *database.HistoryDB) Option {
	return func(o *Orchestrator) {
		o.history = db
	}
}

// New creates an Orchestrator driving the given engine.
func New(eng engine.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:     eng,
		resultsDir: "crawl_results",
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run executes one crawl invocation to its terminal state. Domain failures
// are reported inside the returned outcome, never as a Go error: the
// caller always receives the stats accumulated up to the failure.
func (o *Orchestrator) Run(ctx context.Context, req Request) model.CrawlOutcome {
	agg := stats.New()

	// Initializing: acquire the engine session with release guaranteed
	// on every exit path.
	session, err := o.engine.Open(ctx)
	if err != nil {
		o.logger.Error("engine initialization failed", "url", req.URL, "error", err)
		return model.CrawlOutcome{Stats: agg.Stats(), Err: stageError(tagInitialization, err)}
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.logger.Warn("session close failed", "error", err)
		}
	}()

	// Running: the drain goroutine is the only writer of the aggregator
	// until it is joined below, so interim counters need no locking.
	events := make(chan engine.ProgressEvent, eventBuffer)
	done := make(chan struct{})
	go o.drainEvents(events, agg, req.Verbose, done)

	results, runErr := session.Run(ctx, req.URL, engine.RunOptions{
		MaxDepth:        req.MaxDepth,
		IncludeExternal: req.IncludeExternal,
		Extractor:       engine.ExtractorByName(req.Strategy),
		Events:          events,
	})
	close(events)
	<-done

	if runErr != nil {
		o.logger.Error("crawl execution failed", "url", req.URL, "error", runErr)
		return model.CrawlOutcome{Stats: agg.Stats(), Err: stageError(tagCrawling, runErr)}
	}

	// Finalizing: replay classifications over the authoritative result
	// list, then seal and persist.
	builder := report.NewBuilder()
	pages := make([]database.PageRecord, 0, len(results))

	agg.ResetFinalTally()
	for i, r := range results {
		c := o.classifyResult(i, r)
		agg.Record(c)
		if c == model.ClassSuccess {
			builder.Append(r)
		}
		pages = append(pages, database.PageRecord{
			URL:            r.URL,
			StatusCode:     r.StatusCode,
			Depth:          r.Depth,
			Classification: c.String(),
		})
	}
	agg.Seal()

	outputPath := req.OutputFile
	if outputPath == "" {
		outputPath = defaultOutputPath(o.resultsDir, req.URL)
	}

	if err := writeArtifact(outputPath, builder.Finalize()); err != nil {
		o.logger.Error("report write failed", "path", outputPath, "error", err)
		return model.CrawlOutcome{Stats: agg.Stats(), Err: stageError(tagWriting, err)}
	}

	o.logger.Info("crawl completed",
		"url", req.URL,
		"path", outputPath,
		"pages", agg.Stats().TotalPages,
		"successful", agg.Stats().SuccessfulPages,
	)

	outcome := model.CrawlOutcome{FilePath: outputPath, Stats: agg.Stats()}
	o.saveHistory(ctx, req.URL, outcome, pages)
	return outcome
}

// classifyResult classifies one result and logs non-success categories.
// ProcessingError results are logged and skipped; they never abort the
// loop.
func (o *Orchestrator) classifyResult(idx int, r model.PageResult) model.Classification {
	c := classify.Classify(r)
	switch c {
	case model.ClassNotFound:
		o.logger.Debug("page not found", "url", r.URL)
	case model.ClassForbidden:
		o.logger.Debug("access forbidden", "url", r.URL)
	case model.ClassProcessingError:
		o.logger.Warn("error processing result", "index", idx, "url", r.URL)
	case model.ClassSuccess, model.ClassEmpty:
	}
	return c
}

// drainEvents consumes progress events until the channel closes.
// It runs only while the engine is crawling; the orchestrator joins it
// before Finalizing touches the aggregator.
func (o *Orchestrator) drainEvents(events <-chan engine.ProgressEvent, agg *stats.Aggregator, verbose bool, done chan<- struct{}) {
	defer close(done)

	for ev := range events {
		switch ev.Kind {
		case engine.EventVisitStart:
			agg.VisitStarted()
			if verbose {
				o.logger.Info("visiting", "url", ev.URL, "page", agg.Stats().TotalPages)
			}
		case engine.EventVisitComplete:
			agg.VisitCompleted(ev.Success)
			if verbose {
				o.logger.Info("completed", "url", ev.URL, "success", ev.Success)
			}
		}
	}
}

// saveHistory records the outcome when history is enabled. Persistence is
// best-effort: a history failure never fails a completed crawl.
func (o *Orchestrator) saveHistory(ctx context.Context, url string, outcome model.CrawlOutcome, pages []database.PageRecord) {
	if o.history == nil {
		return
	}
	if err := o.history.SaveOutcome(ctx, url, outcome, pages); err != nil {
		o.logger.Warn("failed to save crawl history", "url", url, "error", err)
	}
}

// stageError formats the outcome error text for a failed stage.
func stageError(tag string, err error) string {
	return fmt.Sprintf("%s: %v", tag, err)
}
