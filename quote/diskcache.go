package quote

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/gestor/date"
	"go.uber.org/zap"
)

// DailyCache is an http.RoundTripper that keeps successful responses on disk
// for the rest of the day. Quotes fetched twice on the same day hit the
// network once.
type DailyCache struct {
	base http.RoundTripper
	dir  string
	log  *zap.Logger
	// today is replaced in tests.
	today func() date.Date
}

// NewDailyCache wraps base, http.DefaultTransport if nil, and stores the
// responses in dir, the system temporary directory if empty.
func NewDailyCache(base http.RoundTripper, dir string, log *zap.Logger) *DailyCache {
	if base == nil {
		base = http.DefaultTransport
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DailyCache{base: base, dir: dir, log: log, today: date.Today}
}

// Client returns an HTTP client using the cache as transport.
func (c *DailyCache) Client() *http.Client {
	return &http.Client{Transport: c, Timeout: DefaultTimeout}
}

func (c *DailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}
	// the day is part of the key, so entries expire every day.
	key := fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL.String())
	key = fmt.Sprintf("gestor-%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		c.log.Debug("cache hit", zap.String("url", req.URL.String()))
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Debug("cache write failed (ignored)", zap.Error(err))
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *DailyCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response on disk. DumpResponse leaves resp.Body readable.
func (c *DailyCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0600)
}
