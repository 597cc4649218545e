package stats

import (
	"time"

	"github.com/crawlmd/crawlmd/internal/model"
)

// Aggregator owns the CrawlStats of one crawl invocation.
//
// It is not safe for concurrent use; the orchestrator guarantees that
// progress-event updates and the final replay never overlap, so callers
// need no locking.
type Aggregator struct {
	stats model.CrawlStats

	// start is captured on the monotonic clock so the sealed duration is
	// non-negative even if the wall clock steps backwards mid-crawl.
	start time.Time
}

// New creates an Aggregator with zeroed counters and the start time stamped.
func New() *Aggregator {
	now := time.Now()
	return &Aggregator{
		stats: model.CrawlStats{StartTime: now},
		start: now,
	}
}

// VisitStarted records one page_visit_start progress event.
func (a *Aggregator) VisitStarted() {
	a.stats.TotalPages++
}

// VisitCompleted records one page_visit_complete progress event.
// Success feeds the interim successful counter, which the final replay
// later overwrites; failure feeds FailedPages, which the replay never
// touches.
func (a *Aggregator) VisitCompleted(success bool) {
	if success {
		a.stats.SuccessfulPages++
	} else {
		a.stats.FailedPages++
	}
}

// ResetFinalTally zeroes the classification counters before replaying the
// final result list. FailedPages and TotalPages are deliberately kept:
// they count attempts observed, not results classified.
func (a *Aggregator) ResetFinalTally() {
	a.stats.SuccessfulPages = 0
	a.stats.NotFoundPages = 0
	a.stats.ForbiddenPages = 0
}

// Record increments the counter matching one classification from the final
// replay. Empty and ProcessingError results are excluded from the report
// and counted nowhere.
func (a *Aggregator) Record(c model.Classification) {
	switch c {
	case model.ClassSuccess:
		a.stats.SuccessfulPages++
	case model.ClassNotFound:
		a.stats.NotFoundPages++
	case model.ClassForbidden:
		a.stats.ForbiddenPages++
	case model.ClassEmpty, model.ClassProcessingError:
		// excluded from all counters
	}
}

// Seal stamps the end time and duration exactly once. Further calls are
// no-ops, and the stats must not be mutated afterwards.
func (a *Aggregator) Seal() {
	if a.stats.Sealed() {
		return
	}
	a.stats.EndTime = time.Now()
	a.stats.DurationSeconds = time.Since(a.start).Seconds()
}

// Stats returns a copy of the current counters.
func (a *Aggregator) Stats() model.CrawlStats {
	return a.stats
}
