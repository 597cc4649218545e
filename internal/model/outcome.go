package model

// CrawlOutcome is the terminal return value of one crawl invocation.
// Exactly one of FilePath or Err is meaningfully populated; Stats is always
// present (possibly partially filled) for diagnostics.
type CrawlOutcome struct {
	// FilePath is the location of the written report artifact.
	// Empty on any failed invocation.
	FilePath string `json:"file_path,omitempty"`

	// Stats holds the counters accumulated up to the terminal state.
	Stats CrawlStats `json:"stats"`

	// Err is the textual error for a failed invocation, tagged with the
	// originating stage ("Initialization error", "Crawling error",
	// "Writing error"). Empty on success.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the invocation terminated in the Failed state.
func (o CrawlOutcome) Failed() bool {
	return o.Err != ""
}
