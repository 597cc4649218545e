package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/crawlmd/crawlmd/internal/model"
)

// HistoryDB stores the outcomes of past crawl invocations.
// It manages a single SQLite file and is safe for use from one process.
//
// Design decision: We use one database file for all targets rather than a
// file per site. This keeps cross-site queries (recent crawls, totals)
// simple and makes backup a single-file operation.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file on Open.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// CrawlRecord is one persisted crawl invocation.
type CrawlRecord struct {
	ID              int64
	StartURL        string
	FilePath        string
	TotalPages      int
	SuccessfulPages int
	FailedPages     int
	NotFoundPages   int
	ForbiddenPages  int
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds float64
	Error           string
}

// PageRecord is one classified page within a crawl.
type PageRecord struct {
	ID             int64
	CrawlID        int64
	URL            string
	StatusCode     int
	Depth          int
	Classification string
}

// Open opens or creates a HistoryDB at dir/crawlmd.db.
func Open(dir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dir, "crawlmd.db")

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports a single writer; keep the pool minimal.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the location of the database file.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per crawl invocation, successful or failed.
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		file_path TEXT,
		total_pages INTEGER NOT NULL DEFAULT 0,
		successful_pages INTEGER NOT NULL DEFAULT 0,
		failed_pages INTEGER NOT NULL DEFAULT 0,
		not_found_pages INTEGER NOT NULL DEFAULT 0,
		forbidden_pages INTEGER NOT NULL DEFAULT 0,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		duration_seconds REAL NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_start_url ON crawls(start_url);
	CREATE INDEX IF NOT EXISTS idx_crawls_start_time ON crawls(start_time);

	-- One row per classified page of a crawl.
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		depth INTEGER,
		classification TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl_id ON pages(crawl_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveOutcome records one crawl outcome and its classified pages.
func (h *HistoryDB) SaveOutcome(ctx context.Context, startURL string, outcome model.CrawlOutcome, pages []PageRecord) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	s := outcome.Stats
	res, err := tx.ExecContext(ctx, `
		INSERT INTO crawls (
			start_url, file_path, total_pages, successful_pages,
			failed_pages, not_found_pages, forbidden_pages,
			start_time, end_time, duration_seconds, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		startURL, outcome.FilePath, s.TotalPages, s.SuccessfulPages,
		s.FailedPages, s.NotFoundPages, s.ForbiddenPages,
		s.StartTime, nullableTime(s.EndTime), s.DurationSeconds, outcome.Err,
	)
	if err != nil {
		return fmt.Errorf("insert crawl: %w", err)
	}

	crawlID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("crawl id: %w", err)
	}

	for _, p := range pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (crawl_id, url, status_code, depth, classification)
			VALUES (?, ?, ?, ?, ?)`,
			crawlID, p.URL, p.StatusCode, p.Depth, p.Classification,
		); err != nil {
			return fmt.Errorf("insert page %s: %w", p.URL, err)
		}
	}

	return tx.Commit()
}

// RecentCrawls returns up to limit crawl records, newest first.
func (h *HistoryDB) RecentCrawls(ctx context.Context, limit int) ([]CrawlRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, start_url, COALESCE(file_path, ''),
			total_pages, successful_pages, failed_pages,
			not_found_pages, forbidden_pages,
			start_time, COALESCE(end_time, start_time),
			duration_seconds, COALESCE(error, '')
		FROM crawls
		ORDER BY start_time DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query crawls: %w", err)
	}
	defer rows.Close()

	var records []CrawlRecord
	for rows.Next() {
		var r CrawlRecord
		if err := rows.Scan(
			&r.ID, &r.StartURL, &r.FilePath,
			&r.TotalPages, &r.SuccessfulPages, &r.FailedPages,
			&r.NotFoundPages, &r.ForbiddenPages,
			&r.StartTime, &r.EndTime,
			&r.DurationSeconds, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("scan crawl: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// PagesForCrawl returns the classified pages of one crawl in insert order.
func (h *HistoryDB) PagesForCrawl(ctx context.Context, crawlID int64) ([]PageRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, crawl_id, url, COALESCE(status_code, 0),
			COALESCE(depth, -1), classification
		FROM pages
		WHERE crawl_id = ?
		ORDER BY id`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var p PageRecord
		if err := rows.Scan(&p.ID, &p.CrawlID, &p.URL, &p.StatusCode, &p.Depth, &p.Classification); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// nullableTime maps the zero time to NULL for storage.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
