package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

const chartAAPL = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD","regularMarketPrice":227.456}}],"error":null}}`

// yahooServer serves the chart endpoint from a map of symbol to payload.
func yahooServer(t *testing.T, payloads map[string]string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v8/finance/chart/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.URL.Query().Get("interval") != "1d" || r.URL.Query().Get("range") != "1d" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		body, ok := payloads[r.PathValue("symbol")]
		if !ok {
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found"}}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYahoo_Quote(t *testing.T) {
	srv := yahooServer(t, map[string]string{
		"AAPL":   chartAAPL,
		"ZERO":   `{"chart":{"result":[{"meta":{"regularMarketPrice":0}}]}}`,
		"EMPTY":  `{"chart":{"result":[]}}`,
		"TEXT":   `{"chart":{"result":[{"meta":{"regularMarketPrice":"n/a"}}]}}`,
		"BROKEN": `{"chart":`,
	}, nil)
	y := NewYahoo(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()), WithLogger(zaptest.NewLogger(t)))

	testCases := []struct {
		security string
		want     decimal.Decimal
		wantOK   bool
	}{
		{"aapl", decimal.RequireFromString("227.46"), true},
		{"ZERO", decimal.Zero, false},
		{"EMPTY", decimal.Zero, false},
		{"TEXT", decimal.Zero, false},
		{"BROKEN", decimal.Zero, false},
		{"MISSING", decimal.Zero, false},
		{"", decimal.Zero, false},
	}
	for _, tc := range testCases {
		t.Run(tc.security, func(t *testing.T) {
			got, ok := y.Quote(context.Background(), tc.security)
			if ok != tc.wantOK || !got.Equal(tc.want) {
				t.Errorf("Quote(%q) = %v, %v, want %v, %v", tc.security, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestYahoo_FetchError(t *testing.T) {
	srv := yahooServer(t, nil, nil)
	y := NewYahoo(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if _, err := y.Fetch(context.Background(), "MISSING"); err == nil {
		t.Error("Fetch() expected an error for a 404")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := y.Fetch(ctx, "AAPL"); err == nil {
		t.Error("Fetch() expected an error for a cancelled context")
	}
}

func TestYahoo_DailyCache(t *testing.T) {
	var calls atomic.Int32
	srv := yahooServer(t, map[string]string{"AAPL": chartAAPL}, &calls)
	cache := NewDailyCache(srv.Client().Transport, t.TempDir(), zaptest.NewLogger(t))
	y := NewYahoo(WithBaseURL(srv.URL), WithHTTPClient(cache.Client()), WithRateLimit(100))

	for range 3 {
		if _, ok := y.Quote(context.Background(), "AAPL"); !ok {
			t.Fatal("Quote() failed")
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}

	// Failures are not cached.
	for range 2 {
		y.Quote(context.Background(), "MISSING")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}
