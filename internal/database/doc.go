// Package database provides SQLite-based persistence of crawl history:
// one record per crawl invocation plus the per-page classifications it
// produced. History powers the `history` CLI command and comparison of
// repeated crawls of the same site.
package database
