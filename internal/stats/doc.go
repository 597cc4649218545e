// Package stats maintains the running counters for a single crawl
// invocation.
//
// Two counting strategies coexist on purpose: interim counters driven by
// progress events observe crawl attempts, while the final tally is replayed
// from the authoritative end-of-crawl result list. FailedPages stays
// event-driven even after the replay.
package stats
