package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/crawlmd/crawlmd/internal/model"
)

// openTestDB opens a HistoryDB in a temporary directory.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

// sampleOutcome builds an outcome with sealed stats.
func sampleOutcome(filePath string) model.CrawlOutcome {
	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return model.CrawlOutcome{
		FilePath: filePath,
		Stats: model.CrawlStats{
			TotalPages:      5,
			SuccessfulPages: 3,
			FailedPages:     1,
			NotFoundPages:   1,
			ForbiddenPages:  0,
			StartTime:       start,
			EndTime:         start.Add(9 * time.Second),
			DurationSeconds: 9,
		},
	}
}

// TestOpenCreatesDatabase tests directory and schema creation.
func TestOpenCreatesDatabase(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "history")
	db, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if db.Path() != filepath.Join(dir, "crawlmd.db") {
		t.Errorf("Path() = %s", db.Path())
	}
}

// TestOpenWithoutCreate tests the missing-database error path.
func TestOpenWithoutCreate(t *testing.T) {
	t.Parallel()

	opts := Options{CreateIfNotExists: false, EnableWAL: false}
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Error("expected error opening a missing database without create")
	}
}

// TestSaveAndQueryOutcome tests the full round trip.
func TestSaveAndQueryOutcome(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	pages := []PageRecord{
		{URL: "http://example.com/", StatusCode: 200, Depth: 0, Classification: "success"},
		{URL: "http://example.com/gone", StatusCode: 404, Depth: 1, Classification: "not_found"},
	}
	if err := db.SaveOutcome(ctx, "http://example.com", sampleOutcome("/tmp/report.md"), pages); err != nil {
		t.Fatalf("SaveOutcome: %v", err)
	}

	records, err := db.RecentCrawls(ctx, 10)
	if err != nil {
		t.Fatalf("RecentCrawls: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.StartURL != "http://example.com" {
		t.Errorf("StartURL = %s", r.StartURL)
	}
	if r.FilePath != "/tmp/report.md" {
		t.Errorf("FilePath = %s", r.FilePath)
	}
	if r.TotalPages != 5 || r.SuccessfulPages != 3 || r.NotFoundPages != 1 {
		t.Errorf("counters wrong: %+v", r)
	}
	if r.Error != "" {
		t.Errorf("Error = %q, want empty", r.Error)
	}

	got, err := db.PagesForCrawl(ctx, r.ID)
	if err != nil {
		t.Fatalf("PagesForCrawl: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d pages, want 2", len(got))
	}
	if got[0].URL != "http://example.com/" || got[0].Classification != "success" {
		t.Errorf("first page = %+v", got[0])
	}
	if got[1].StatusCode != 404 || got[1].Classification != "not_found" {
		t.Errorf("second page = %+v", got[1])
	}
}

// TestSaveFailedOutcome tests persistence of a failed invocation.
func TestSaveFailedOutcome(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	outcome := model.CrawlOutcome{
		Stats: model.CrawlStats{TotalPages: 2, StartTime: time.Now()},
		Err:   "Crawling error: connection refused",
	}
	if err := db.SaveOutcome(ctx, "http://down.example.com", outcome, nil); err != nil {
		t.Fatalf("SaveOutcome: %v", err)
	}

	records, err := db.RecentCrawls(ctx, 1)
	if err != nil {
		t.Fatalf("RecentCrawls: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Error != "Crawling error: connection refused" {
		t.Errorf("Error = %q", records[0].Error)
	}
	if records[0].FilePath != "" {
		t.Errorf("FilePath = %q, want empty", records[0].FilePath)
	}
}

// TestRecentCrawlsOrderAndLimit tests newest-first ordering and the limit.
func TestRecentCrawlsOrderAndLimit(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		outcome := model.CrawlOutcome{
			FilePath: "/tmp/r.md",
			Stats:    model.CrawlStats{StartTime: base.Add(time.Duration(i) * time.Hour)},
		}
		if err := db.SaveOutcome(ctx, "http://example.com", outcome, nil); err != nil {
			t.Fatalf("SaveOutcome %d: %v", i, err)
		}
	}

	records, err := db.RecentCrawls(ctx, 2)
	if err != nil {
		t.Fatalf("RecentCrawls: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if !records[0].StartTime.After(records[1].StartTime) {
		t.Errorf("records not newest first: %v, %v", records[0].StartTime, records[1].StartTime)
	}
}
