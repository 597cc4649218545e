package engine

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/crawlmd/crawlmd/internal/model"
)

// ErrSessionClosed is returned when Run is called on a closed session.
var ErrSessionClosed = errors.New("engine: session is closed")

// Default spider settings.
const (
	// DefaultMaxPages bounds a single crawl. This prevents runaway
	// crawling on large or infinitely-generating sites.
	DefaultMaxPages = 100

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultRequestsPerSecond is the politeness rate limit.
	DefaultRequestsPerSecond = 2.0

	// DefaultUserAgent identifies crawlmd in HTTP requests so operators
	// can recognize scanner traffic in their logs.
	DefaultUserAgent = "crawlmd/1.0 (+https://github.com/crawlmd/crawlmd)"

	// defaultHTTPTimeout applies per request when no client is supplied.
	defaultHTTPTimeout = 30 * time.Second
)

// HTTPEngine is the built-in crawl engine: a breadth-first HTTP spider.
// One HTTPEngine can serve many concurrent crawl invocations; every Open
// call returns an independent session with its own traversal state.
type HTTPEngine struct {
	client            *http.Client
	userAgent         string
	maxPages          int
	maxBodySize       int64
	requestsPerSecond float64
	respectRobots     bool
}

// HTTPEngineOption configures an HTTPEngine.
type HTTPEngineOption func(*HTTPEngine)

// WithHTTPClient sets a custom HTTP client, e.g. for proxying or tests.
func WithHTTPClient(client *http.Client) HTTPEngineOption {
	return func(e *HTTPEngine) {
		e.client = client
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) HTTPEngineOption {
	return func(e *HTTPEngine) {
		e.userAgent = ua
	}
}

// WithMaxPages sets the maximum number of pages fetched per crawl.
func WithMaxPages(n int) HTTPEngineOption {
	return func(e *HTTPEngine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) HTTPEngineOption {
	return func(e *HTTPEngine) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// WithRequestsPerSecond sets the politeness rate limit.
func WithRequestsPerSecond(rps float64) HTTPEngineOption {
	return func(e *HTTPEngine) {
		if rps > 0 {
			e.requestsPerSecond = rps
		}
	}
}

// WithRobotsPolicy controls whether robots.txt rules are honored.
func WithRobotsPolicy(respect bool) HTTPEngineOption {
	return func(e *HTTPEngine) {
		e.respectRobots = respect
	}
}

// NewHTTPEngine creates an HTTPEngine with the given options.
func NewHTTPEngine(opts ...HTTPEngineOption) *HTTPEngine {
	e := &HTTPEngine{
		userAgent:         DefaultUserAgent,
		maxPages:          DefaultMaxPages,
		maxBodySize:       DefaultMaxBodySize,
		requestsPerSecond: DefaultRequestsPerSecond,
		respectRobots:     true,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.client == nil {
		e.client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return e
}

// Open acquires a spider session for one crawl invocation.
func (e *HTTPEngine) Open(_ context.Context) (Session, error) {
	s := &Spider{
		client:      e.client,
		userAgent:   e.userAgent,
		maxPages:    e.maxPages,
		maxBodySize: e.maxBodySize,
		limiter:     rate.NewLimiter(rate.Limit(e.requestsPerSecond), 1),
		visited:     make(map[string]bool),
	}
	if e.respectRobots {
		s.robots = newRobotsCache(e.client)
	}
	return s, nil
}

// Spider is one crawl session: a breadth-first traversal with visited-set
// deduplication, depth bounds, and politeness limits. Not safe for
// concurrent use; the orchestrator runs exactly one Run per session.
type Spider struct {
	client      *http.Client
	userAgent   string
	maxPages    int
	maxBodySize int64
	limiter     *rate.Limiter

	// robots is nil when robots.txt enforcement is disabled.
	robots *robotsCache

	visited map[string]bool
	closed  bool
}

// queueItem is one pending URL in the BFS queue.
type queueItem struct {
	url   string
	depth int
}

// Run implements Session. It returns every fetched page in visit order,
// including error pages; transport failures yield a PageResult without
// status or content so the caller's classifier sees every attempt.
func (s *Spider) Run(ctx context.Context, startURL string, opts RunOptions) ([]model.PageResult, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	start, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}
	if start.Scheme == "" {
		start.Scheme = "https"
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = MarkdownExtractor{}
	}

	results := make([]model.PageResult, 0)
	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 && len(results) < s.maxPages {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		norm := normalizeURL(item.url)
		if s.visited[norm] {
			continue
		}
		s.visited[norm] = true

		if s.robots != nil && !s.robots.allowed(ctx, item.url, s.userAgent) {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return results, err
		}

		s.emit(opts.Events, ProgressEvent{Kind: EventVisitStart, URL: item.url})

		page, links, err := s.fetchPage(ctx, item.url, item.depth, extractor)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.emit(opts.Events, ProgressEvent{Kind: EventVisitComplete, URL: item.url})
			results = append(results, model.PageResult{URL: item.url, Depth: item.depth})
			continue
		}

		s.emit(opts.Events, ProgressEvent{
			Kind:    EventVisitComplete,
			URL:     item.url,
			Success: page.StatusCode < 400,
		})
		results = append(results, page)

		if item.depth >= opts.MaxDepth {
			continue
		}
		for _, link := range links {
			if s.visited[normalizeURL(link)] {
				continue
			}
			if !opts.IncludeExternal && !sameHost(start.Host, link) {
				continue
			}
			queue = append(queue, queueItem{url: link, depth: item.depth + 1})
		}
	}

	return results, nil
}

// Close implements Session.
func (s *Spider) Close() error {
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}

// emit delivers a progress event when the caller observes progress.
// The send blocks until the caller drains the channel; per the Session
// contract the caller keeps draining until Run returns.
func (s *Spider) emit(events chan<- ProgressEvent, ev ProgressEvent) {
	if events != nil {
		events <- ev
	}
}

// fetchPage fetches one URL and extracts its content and outgoing links.
func (s *Spider) fetchPage(ctx context.Context, pageURL string, depth int, extractor Extractor) (model.PageResult, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return model.PageResult{}, nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.PageResult{}, nil, err
	}
	defer resp.Body.Close()

	mediaType, body, err := s.readBody(resp)
	if err != nil {
		return model.PageResult{}, nil, err
	}

	extraction, err := extractor.Extract(pageURL, body, mediaType)
	if err != nil {
		return model.PageResult{}, nil, err
	}

	page := model.PageResult{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Markdown:   extraction.Markdown,
		Text:       extraction.Text,
		Depth:      depth,
	}
	return page, extraction.Links, nil
}

// readBody reads a size-capped response body, decoding it to UTF-8 when
// the Content-Type declares a known charset.
func (s *Spider) readBody(resp *http.Response) (string, []byte, error) {
	mediaType := resp.Header.Get("Content-Type")
	var params map[string]string
	if mt, p, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
		params = p
	}

	var reader io.Reader = io.LimitReader(resp.Body, s.maxBodySize)
	if charset := params["charset"]; charset != "" {
		if enc, err := htmlindex.Get(charset); err == nil && enc != nil {
			reader = transform.NewReader(reader, enc.NewDecoder())
		}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, err
	}
	return mediaType, body, nil
}

// normalizeURL canonicalizes a URL for visited-set deduplication: the
// fragment is dropped, scheme and host are lowercased, and the empty path
// becomes "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// sameHost reports whether targetURL points at baseHost.
func sameHost(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, baseHost)
}
