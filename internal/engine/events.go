package engine

// EventKind identifies a progress event type.
type EventKind int

const (
	// EventVisitStart is emitted just before a page fetch begins.
	EventVisitStart EventKind = iota

	// EventVisitComplete is emitted after a page fetch finishes,
	// successfully or not.
	EventVisitComplete
)

// ProgressEvent reports the progress of a single page visit.
// Events are delivered in visit order, zero or more per crawl.
type ProgressEvent struct {
	// Kind is the event type.
	Kind EventKind

	// URL is the page being visited.
	URL string

	// Success is only meaningful for EventVisitComplete: true when the
	// fetch produced an HTTP response below 400.
	Success bool
}
