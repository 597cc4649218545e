// Package model defines the core data structures shared across crawlmd:
// page results delivered by the crawl engine, their classifications,
// running crawl statistics, and the terminal crawl outcome.
package model
