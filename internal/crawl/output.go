package crawl

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crawlmd/crawlmd/internal/sanitize"
)

// outputTimeFormat names report files by creation time.
const outputTimeFormat = "20060102_150405"

// defaultOutputPath derives the report location from the target host and a
// creation timestamp: {resultsDir}/crawl_{sanitizedHost}_{YYYYMMDD_HHMMSS}.md.
func defaultOutputPath(resultsDir, rawURL string) string {
	host := "site"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = sanitize.Text(strings.ReplaceAll(host, ".", "_"))

	name := fmt.Sprintf("crawl_%s_%s.md", host, time.Now().Format(outputTimeFormat))
	return filepath.Join(resultsDir, name)
}

// writeArtifact persists the report document, creating missing parent
// directories. The whole document passes through the sanitizer once more
// before hitting disk so the artifact is ASCII end to end.
func writeArtifact(path, document string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sanitize.Text(document)), 0600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
