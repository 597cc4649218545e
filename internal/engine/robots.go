package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache fetches and caches robots.txt rules per host.
// A nil data entry means allow-all (missing file, server error, or fetch
// failure): robots errors must never stall a crawl.
type robotsCache struct {
	client *http.Client

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// newRobotsCache creates a robotsCache using the given HTTP client.
func newRobotsCache(client *http.Client) *robotsCache {
	return &robotsCache{
		client: client,
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// allowed reports whether userAgent may fetch pageURL per the host's
// robots.txt. Fetch and parse failures fail open.
func (r *robotsCache) allowed(ctx context.Context, pageURL, userAgent string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}

	data, cached := r.lookup(u.Host)
	if !cached {
		data = r.fetch(ctx, u)
		r.store(u.Host, data)
	}
	if data == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, userAgent)
}

// lookup returns the cached entry for a host.
func (r *robotsCache) lookup(host string) (*robotstxt.RobotsData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.hosts[host]
	return data, ok
}

// store caches the entry for a host, including nil allow-all entries.
func (r *robotsCache) store(host string, data *robotstxt.RobotsData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[host] = data
}

// fetch retrieves and parses a host's robots.txt. Any failure yields nil.
func (r *robotsCache) fetch(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}
