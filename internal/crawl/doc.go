// Package crawl orchestrates a single crawl invocation: it drives the
// crawl engine, drains progress events into the stats aggregator, runs the
// classification and report pipeline over the final result list, and
// persists the report artifact.
//
// # Lifecycle
//
// One invocation moves through Initializing (engine session acquired),
// Running (engine crawls, progress events drained concurrently), and
// Finalizing (results classified, stats sealed, report written), ending in
// Completed or Failed. Stats and report are owned exclusively by the
// invocation; concurrent invocations share nothing.
package crawl
