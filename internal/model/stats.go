package model

import "time"

// CrawlStats holds the running counters for a single crawl invocation.
//
// TotalPages counts crawl attempts observed via progress events and may
// exceed the number of results ultimately classified: the engine can report
// visits that never produce a distinct result. The classification counters
// (SuccessfulPages, NotFoundPages, ForbiddenPages) are recomputed from the
// final result list, while FailedPages is driven only by progress events.
//
// Ownership: a CrawlStats belongs to exactly one in-flight orchestrator
// invocation and is never shared across goroutines, so no locking is needed.
type CrawlStats struct {
	// TotalPages counts page_visit_start progress events.
	TotalPages int `json:"total_pages"`

	// SuccessfulPages counts Success classifications after the final replay.
	SuccessfulPages int `json:"successful_pages"`

	// FailedPages counts page_visit_complete events reporting non-success.
	FailedPages int `json:"failed_pages"`

	// NotFoundPages counts NotFound (404) classifications.
	NotFoundPages int `json:"not_found_pages"`

	// ForbiddenPages counts Forbidden (403) classifications.
	ForbiddenPages int `json:"forbidden_pages"`

	// StartTime is when the crawl invocation began.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the final result was processed. Zero until sealed.
	EndTime time.Time `json:"end_time,omitzero"`

	// DurationSeconds is EndTime minus StartTime. Zero until sealed.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Sealed reports whether the stats have been finalized.
func (s *CrawlStats) Sealed() bool {
	return !s.EndTime.IsZero()
}
