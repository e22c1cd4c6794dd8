package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TickPull/internal/service/ratelimit"
	"TickPull/pkg/cache"
	"TickPull/pkg/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.History.BaseURL = baseURL
	cfg.History.APIKey = "test-key"
	cfg.History.RatePerSec = 1000
	cfg.History.RateBurst = 1000
	return cfg
}

func TestFetchTicks(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/v1/ticks" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "EURUSD" {
			t.Fatalf("unexpected symbol %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"symbol": "EURUSD",
			"ticks": []map[string]float64{
				{"t": 1714554000000, "b": 1.10, "a": 1.11, "bv": 2, "av": 4},
				{"t": 1714554001000, "b": 1.11, "a": 1.12},
			},
		})
	}))
	defer srv.Close()

	p := NewRESTProvider(testConfig(srv.URL), ratelimit.New(), cache.NewMemoryCache())
	from := time.UnixMilli(1714554000000).UTC()
	to := from.Add(time.Minute)

	ticks, err := p.FetchTicks(context.Background(), "EURUSD", from, to)
	if err != nil {
		t.Fatalf("FetchTicks: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[0].Bid != 1.10 || ticks[0].AskVolume != 4 {
		t.Fatalf("unexpected first tick %+v", ticks[0])
	}
	if !ticks[0].Timestamp.Equal(from) {
		t.Fatalf("unexpected timestamp %v", ticks[0].Timestamp)
	}

	// same window again must come from cache
	if _, err := p.FetchTicks(context.Background(), "EURUSD", from, to); err != nil {
		t.Fatalf("cached FetchTicks: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}
}

func TestFetchTicksSymbolRequired(t *testing.T) {
	p := NewRESTProvider(testConfig("http://unused"), ratelimit.New(), nil)
	if _, err := p.FetchTicks(context.Background(), "", time.Now(), time.Now()); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestFetchTicksUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.History.RetryAttempts = 2
	p := NewRESTProvider(cfg, ratelimit.New(), nil)
	if _, err := p.FetchTicks(context.Background(), "EURUSD", time.Now().Add(-time.Minute), time.Now()); err == nil {
		t.Fatalf("expected upstream error")
	}
}
