package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/crawlmd/crawlmd/internal/model"
)

// newTestEngine creates an engine tuned for fast tests.
func newTestEngine(opts ...HTTPEngineOption) *HTTPEngine {
	base := []HTTPEngineOption{
		WithRequestsPerSecond(1000),
		WithRobotsPolicy(false),
	}
	return NewHTTPEngine(append(base, opts...)...)
}

// collectEvents drains an event channel into a slice until it is closed.
func collectEvents(ch <-chan ProgressEvent, out *[]ProgressEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	for ev := range ch {
		*out = append(*out, ev)
	}
}

// TestSpiderCrawlDepth tests BFS traversal with a depth bound.
func TestSpiderCrawlDepth(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Home</h1><a href="/a">a</a></body></html>`)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>A</h1><a href="/b">b</a></body></html>`)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>B</h1></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := newTestEngine().Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	results, err := session.Run(context.Background(), srv.URL, RunOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Depth 1: start page plus /a, but not /b.
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}
	if results[0].Depth != 0 || results[1].Depth != 1 {
		t.Errorf("unexpected depths: %d, %d", results[0].Depth, results[1].Depth)
	}
	for _, r := range results {
		if r.StatusCode != http.StatusOK {
			t.Errorf("status for %s = %d, want 200", r.URL, r.StatusCode)
		}
		if r.Markdown == "" {
			t.Errorf("no markdown content for %s", r.URL)
		}
	}
}

// TestSpiderVisitedDedup tests that pages linked multiple times are
// fetched once.
func TestSpiderVisitedDedup(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	hits := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		fmt.Fprint(w, `<html><body><a href="/dup">one</a><a href="/dup#frag">two</a><a href="/dup/">three</a></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := newTestEngine().Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	if _, err := session.Run(context.Background(), srv.URL, RunOptions{MaxDepth: 2}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits["/dup"] != 1 {
		t.Errorf("/dup fetched %d times, want 1", hits["/dup"])
	}
}

// TestSpiderExternalLinkPolicy tests the include-external flag.
func TestSpiderExternalLinkPolicy(t *testing.T) {
	t.Parallel()

	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>External</h1></body></html>`)
	}))
	defer external.Close()

	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><a href="%s/page">away</a></body></html>`, external.URL)
	}))
	defer internal.Close()

	run := func(includeExternal bool) []model.PageResult {
		session, err := newTestEngine().Open(context.Background())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer session.Close()

		results, err := session.Run(context.Background(), internal.URL, RunOptions{
			MaxDepth:        1,
			IncludeExternal: includeExternal,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return results
	}

	if got := run(false); len(got) != 1 {
		t.Errorf("without external links: got %d results, want 1", len(got))
	}
	if got := run(true); len(got) != 2 {
		t.Errorf("with external links: got %d results, want 2", len(got))
	}
}

// TestSpiderProgressEvents tests event ordering and success flags.
func TestSpiderProgressEvents(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/missing">gone</a></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "404 Not Found", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := newTestEngine().Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	events := make(chan ProgressEvent, 16)
	var got []ProgressEvent
	var wg sync.WaitGroup
	wg.Add(1)
	go collectEvents(events, &got, &wg)

	if _, err := session.Run(context.Background(), srv.URL, RunOptions{MaxDepth: 1, Events: events}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(events)
	wg.Wait()

	if len(got) != 4 {
		t.Fatalf("got %d events, want 4: %+v", len(got), got)
	}
	for i, ev := range got {
		wantKind := EventVisitStart
		if i%2 == 1 {
			wantKind = EventVisitComplete
		}
		if ev.Kind != wantKind {
			t.Errorf("event %d kind = %v, want %v", i, ev.Kind, wantKind)
		}
	}
	if !got[1].Success {
		t.Error("start page visit should be successful")
	}
	if got[3].Success {
		t.Error("404 visit should not be successful")
	}
}

// TestSpiderCapturesErrorPages tests that 404 responses become results.
func TestSpiderCapturesErrorPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "404 Not Found", http.StatusNotFound)
	}))
	defer srv.Close()

	session, err := newTestEngine().Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	results, err := session.Run(context.Background(), srv.URL, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", results[0].StatusCode)
	}
}

// TestSpiderRobotsPolicy tests that disallowed paths are skipped.
func TestSpiderRobotsPolicy(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/private/secret">s</a><a href="/open">o</a></body></html>`)
	})
	mux.HandleFunc("/open", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Open</h1></body></html>`)
	})
	mux.HandleFunc("/private/secret", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Secret</h1></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := newTestEngine(WithRobotsPolicy(true)).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	results, err := session.Run(context.Background(), srv.URL, RunOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, r := range results {
		if r.URL == srv.URL+"/private/secret" {
			t.Error("disallowed path was fetched")
		}
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2 (start page and /open)", len(results))
	}
}

// TestSpiderMaxPages tests the page cap.
func TestSpiderMaxPages(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Every page links to a fresh one, so only the cap stops us.
		fmt.Fprintf(w, `<html><body><a href="%s/next">next</a></body></html>`, r.URL.Path)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session, err := newTestEngine(WithMaxPages(3)).Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	results, err := session.Run(context.Background(), srv.URL, RunOptions{MaxDepth: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

// TestSpiderClosedSession tests the closed-session sentinel.
func TestSpiderClosedSession(t *testing.T) {
	t.Parallel()

	session, err := newTestEngine().Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := session.Run(context.Background(), "http://example.com", RunOptions{}); err != ErrSessionClosed {
		t.Errorf("Run on closed session = %v, want ErrSessionClosed", err)
	}
}

// TestSpiderContextCancellation tests that cancellation stops the crawl.
func TestSpiderContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/more">m</a></body></html>`)
	}))
	defer srv.Close()

	session, err := newTestEngine().Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := session.Run(ctx, srv.URL, RunOptions{MaxDepth: 5}); err == nil {
		t.Error("expected error from cancelled context")
	}
}
