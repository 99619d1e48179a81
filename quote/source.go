package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// source holds what the HTTP oracles share: endpoint, client, throttling and
// logging.
type source struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// Option configures an HTTP oracle.
type Option func(*source)

// WithBaseURL sets the API base URL. An empty URL keeps the provider's default.
func WithBaseURL(baseURL string) Option {
	return func(s *source) {
		if baseURL != "" {
			s.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client, for instance one with a DailyCache transport.
func WithHTTPClient(c *http.Client) Option {
	return func(s *source) { s.httpClient = c }
}

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *source) {
		if requestsPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *source) {
		if log != nil {
			s.log = log
		}
	}
}

func newSource(baseURL string, opts []Option) source {
	s := source{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// price GETs addr and extracts the number at path, rounded to cents. Missing,
// non numeric and non positive values are errors.
func (s *source) price(ctx context.Context, symbol, addr, path string) (decimal.Decimal, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("rate limit wait: %w", err)
	}

	var jobj any
	if err := s.jwget(ctx, addr, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %q %w", symbol, path, err)
	}
	// jsonpath may answer a list of one value
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Zero, fmt.Errorf("error parsing %q: %q not a number: %v", symbol, path, jval)
	}
	if val <= 0 {
		return decimal.Zero, fmt.Errorf("no market price for %q: %v", symbol, val)
	}
	return decimal.NewFromFloat(val).Round(2), nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func (s *source) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	s.log.Debug("http get",
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cannot http GET %v%v: %v %s", req.URL.Host, req.URL.Path, resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(data)
}
