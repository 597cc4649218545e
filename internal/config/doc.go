// Package config provides configuration structures and utilities for
// crawlmd. It defines the crawl defaults, output locations, politeness
// settings, and server options, plus the optional .crawlmd YAML file that
// overrides them.
package config
