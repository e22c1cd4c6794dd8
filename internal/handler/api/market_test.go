package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	icache "TickPull/internal/service/cache"
	"TickPull/internal/usecase"
)

type stubTickStore struct {
	ticks []models.Tick
}

func (s *stubTickStore) GetTicks(_ context.Context, _ string, _, _ time.Time, _ int) ([]models.Tick, error) {
	return s.ticks, nil
}

type stubBarStore struct{}

func (stubBarStore) GetBars(context.Context, string, time.Time, time.Time, domrepo.Timeframe) ([]models.Bar, error) {
	return nil, nil
}

func newTestHandler() *MarketHandler {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ticks := make([]models.Tick, 0, 8)
	for i := 0; i < 8; i++ {
		ticks = append(ticks, models.Tick{
			Symbol:    "EURUSD",
			Timestamp: base.Add(time.Duration(i) * 20 * time.Second),
			Bid:       1.10 + float64(i)*0.001,
			Ask:       1.11 + float64(i)*0.001,
		})
	}
	store := &stubTickStore{ticks: ticks}
	bars := usecase.NewBarsUseCase(store, stubBarStore{})
	stats := usecase.NewStatisticsUseCase(store)
	return NewMarketHandler(bars, stats)
}

func TestMarketBarsEndpoint(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/bars?symbol=EURUSD&tf=1m&from=2024-05-01T09:00:00Z&to=2024-05-01T10:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.Bars()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res usecase.GetBarsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Count != 3 {
		t.Fatalf("expected 3 bars, got %d", res.Count)
	}
}

func TestMarketBarsMissingSymbol(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/bars", nil)
	rec := httptest.NewRecorder()
	h.Bars()(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMarketBarsCacheHit(t *testing.T) {
	h := newTestHandler()
	h.SetCache(icache.NewTTLCache())

	url := "/bars?symbol=EURUSD&tf=1m&from=2024-05-01T09:00:00Z&to=2024-05-01T10:00:00Z"
	first := httptest.NewRecorder()
	h.Bars()(first, httptest.NewRequest(http.MethodGet, url, nil))
	second := httptest.NewRecorder()
	h.Bars()(second, httptest.NewRequest(http.MethodGet, url, nil))

	if second.Code != http.StatusOK {
		t.Fatalf("status %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached response differs")
	}
}

func TestMarketStatisticsEndpoint(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/statistics?symbol=EURUSD&from=2024-05-01T09:00:00Z&to=2024-05-01T10:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.Statistics()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var rep models.StatisticsReport
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.TickCount != 8 {
		t.Fatalf("expected 8 ticks, got %d", rep.TickCount)
	}
}

func TestMarketStatisticsEmptyWindow(t *testing.T) {
	store := &stubTickStore{}
	h := NewMarketHandler(
		usecase.NewBarsUseCase(store, stubBarStore{}),
		usecase.NewStatisticsUseCase(store),
	)
	req := httptest.NewRequest(http.MethodGet, "/statistics?symbol=EURUSD", nil)
	rec := httptest.NewRecorder()
	h.Statistics()(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
