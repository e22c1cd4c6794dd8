package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	domrepo "TickPull/internal/domain/repository"
	icache "TickPull/internal/service/cache"
	"TickPull/internal/service/metrics"
	"TickPull/internal/service/ratelimit"
	"TickPull/internal/usecase"
	"TickPull/pkg/http/middleware"
	applogger "TickPull/pkg/logger"
	xutil "TickPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves the plain net/http variants of the market query
// endpoints, with byte-level response caching and per-client throttling.
type MarketHandler struct {
	bars  *usecase.BarsUseCase
	stats *usecase.StatisticsUseCase
	cache icache.BytesCache
	rl    *ratelimit.Limiter
	l     *applogger.Logger
}

func NewMarketHandler(bars *usecase.BarsUseCase, stats *usecase.StatisticsUseCase) *MarketHandler {
	metrics.Register()
	return &MarketHandler{bars: bars, stats: stats, rl: ratelimit.New()}
}

func (h *MarketHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *MarketHandler) SetLogger(l *applogger.Logger) { h.l = l }

// RegisterRoutes mounts the legacy /v1 endpoints next to the /api group.
func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	mw := middleware.Metrics(h.l, 500*time.Millisecond)
	g := e.Group("/v1")
	g.GET("/bars", echo.WrapHandler(mw(h.Bars())))
	g.GET("/statistics", echo.WrapHandler(mw(h.Statistics())))
}

func (h *MarketHandler) Bars() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "bars"
		defer func() { metrics.QueryLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("market.bars missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		tf := domrepo.NormalizeTimeframe(r.URL.Query().Get("tf"))
		limit := xutil.ParseIntDefault(r.URL.Query().Get("limit"), 0)
		from, to, err := queryWindow(r)
		if err != nil {
			http.Error(w, "invalid time range", http.StatusBadRequest)
			return
		}
		if !tf.IsTick() {
			// stable cache keys: snap the window to bucket boundaries
			from, to = xutil.AlignFromTo(from, to, tf.Minutes())
		}
		if !h.rl.Allow(r.RemoteAddr+":bars", 5, 2) {
			if h.l != nil {
				h.l.Warn("market.bars rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "bars:" + symbol + ":" + tf.String() + ":" +
			strconv.FormatInt(from.Unix(), 10) + ":" + strconv.FormatInt(to.Unix(), 10)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("market.bars cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("market.bars cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("market.bars write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("market.bars cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.bars.GetBars(r.Context(), usecase.GetBarsParams{
			Symbol:    symbol,
			From:      from,
			To:        to,
			Timeframe: tf,
			Limit:     limit,
		})
		if err != nil {
			metrics.QueryErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("market.bars error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("market.bars marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("market.bars cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("market.bars write_error", applogger.Error(err))
		}
	}
}

func (h *MarketHandler) Statistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "statistics"
		defer func() { metrics.QueryLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("market.statistics missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		from, to, err := queryWindow(r)
		if err != nil {
			http.Error(w, "invalid time range", http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":stats", 3, 1) {
			if h.l != nil {
				h.l.Warn("market.statistics rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "stats:" + symbol + ":" +
			strconv.FormatInt(from.Unix(), 10) + ":" + strconv.FormatInt(to.Unix(), 10)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("market.statistics cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("market.statistics cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("market.statistics write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("market.statistics cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.stats.GetStatistics(r.Context(), usecase.GetStatisticsParams{
			Symbol: symbol,
			From:   from,
			To:     to,
		})
		if err != nil {
			metrics.QueryErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("market.statistics error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if res == nil {
			http.Error(w, "no ticks in window", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("market.statistics marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("market.statistics cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("market.statistics write_error", applogger.Error(err))
		}
	}
}

func queryWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.Add(-time.Hour)
	to := now
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, err
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return from, to, err
		}
		to = t
	}
	return from, to, nil
}
