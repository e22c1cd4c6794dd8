package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"TickPull/internal/domain/models"
	domsvc "TickPull/internal/domain/service"
	"TickPull/internal/service/ratelimit"
	"TickPull/pkg/cache"
	"TickPull/pkg/config"
)

const rateKey = "history_api"

// RESTProvider fetches historical ticks over the vendor REST API.
// Responses are cached so repeated backfills of the same window do not
// burn API quota.
type RESTProvider struct {
	base     *HTTPProviderBase
	limiter  *ratelimit.Limiter
	cache    cache.Service
	cacheTTL time.Duration
	rate     float64
	burst    float64
	attempts int
}

func NewRESTProvider(cfg *config.Config, limiter *ratelimit.Limiter, c cache.Service) *RESTProvider {
	attempts := cfg.History.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	ttl := cfg.History.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	rate := cfg.History.RatePerSec
	if rate <= 0 {
		rate = 5
	}
	burst := cfg.History.RateBurst
	if burst <= 0 {
		burst = rate
	}
	return &RESTProvider{
		base:     NewHTTPProviderBase(cfg),
		limiter:  limiter,
		cache:    c,
		cacheTTL: ttl,
		rate:     rate,
		burst:    burst,
		attempts: attempts,
	}
}

type tickRow struct {
	T  int64   `json:"t"` // ms
	B  float64 `json:"b"`
	A  float64 `json:"a"`
	BV float64 `json:"bv"`
	AV float64 `json:"av"`
}

type ticksResponse struct {
	Symbol string    `json:"symbol"`
	Ticks  []tickRow `json:"ticks"`
}

func cacheKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("history:ticks:%s:%d:%d", symbol, from.UnixMilli(), to.UnixMilli())
}

// FetchTicks returns the vendor's ticks for the window, cache-first.
func (p *RESTProvider) FetchTicks(ctx context.Context, symbol string, from, to time.Time) ([]models.Tick, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	key := cacheKey(symbol, from, to)

	// cached entries are JSON strings so memory and redis behave alike
	if p.cache != nil {
		var raw string
		if err := p.cache.Get(ctx, key, &raw); err == nil && raw != "" {
			var cached []models.Tick
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	var resp ticksResponse
	err := p.base.GetJSONWithRetry(ctx, "/v1/ticks", map[string][]string{
		"symbol": {symbol},
		"from":   {strconv.FormatInt(from.UnixMilli(), 10)},
		"to":     {strconv.FormatInt(to.UnixMilli(), 10)},
	}, &resp, p.attempts)
	if err != nil {
		return nil, fmt.Errorf("fetch ticks %s: %w", symbol, err)
	}

	out := make([]models.Tick, 0, len(resp.Ticks))
	for _, r := range resp.Ticks {
		out = append(out, models.Tick{
			Symbol:    symbol,
			Timestamp: time.UnixMilli(r.T).UTC(),
			Bid:       r.B,
			Ask:       r.A,
			BidVolume: r.BV,
			AskVolume: r.AV,
		})
	}

	if p.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = p.cache.Set(ctx, key, string(raw), p.cacheTTL)
		}
	}
	return out, nil
}

// wait blocks until the token bucket admits one request.
func (p *RESTProvider) wait(ctx context.Context) error {
	for !p.limiter.Allow(rateKey, p.burst, p.rate) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

var _ domsvc.TickHistoryProvider = (*RESTProvider)(nil)
