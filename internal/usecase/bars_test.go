package usecase

import (
	"context"
	"testing"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
)

type fakeTickStore struct {
	ticks []models.Tick
}

func (f *fakeTickStore) GetTicks(_ context.Context, _ string, _, _ time.Time, limit int) ([]models.Tick, error) {
	if len(f.ticks) > limit {
		return f.ticks[:limit], nil
	}
	return f.ticks, nil
}

type fakeBarStore struct {
	bars []models.Bar
}

func (f *fakeBarStore) GetBars(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Bar, error) {
	return f.bars, nil
}

func mustTF(t *testing.T, s string) domrepo.Timeframe {
	t.Helper()
	tf, err := domrepo.ParseTimeframe(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tf
}

func TestGetBarsAggregates(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeTickStore{ticks: []models.Tick{
		{Symbol: "EURUSD", Timestamp: base, Bid: 1.10, Ask: 1.11},
		{Symbol: "EURUSD", Timestamp: base.Add(30 * time.Second), Bid: 1.12, Ask: 1.13},
		{Symbol: "EURUSD", Timestamp: base.Add(70 * time.Second), Bid: 1.11, Ask: 1.12},
	}}
	uc := NewBarsUseCase(store, &fakeBarStore{})

	res, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "EURUSD",
		From:      base,
		To:        base.Add(2 * time.Minute),
		Timeframe: mustTF(t, "1m"),
	})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(res.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(res.Bars))
	}
	if res.Ticks != nil {
		t.Fatalf("ticks should be empty on an aggregated result")
	}
	if res.Bars[0].TickCount != 2 || res.Bars[1].TickCount != 1 {
		t.Fatalf("unexpected tick counts %d/%d", res.Bars[0].TickCount, res.Bars[1].TickCount)
	}
}

func TestGetBarsTickPassThrough(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeTickStore{ticks: []models.Tick{
		{Symbol: "EURUSD", Timestamp: base, Bid: 1.10, Ask: 1.11},
		{Symbol: "EURUSD", Timestamp: base.Add(time.Second), Bid: 1.12, Ask: 1.13},
	}}
	uc := NewBarsUseCase(store, &fakeBarStore{})

	res, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "EURUSD",
		From:      base,
		To:        base.Add(time.Minute),
		Timeframe: domrepo.TickTimeframe,
	})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(res.Ticks) != 2 {
		t.Fatalf("expected 2 raw ticks, got %d", len(res.Ticks))
	}
	if res.Bars != nil {
		t.Fatalf("bars should be empty on a tick pass-through")
	}
}

func TestGetBarsSymbolRequired(t *testing.T) {
	uc := NewBarsUseCase(&fakeTickStore{}, &fakeBarStore{})
	if _, err := uc.GetBars(context.Background(), GetBarsParams{Timeframe: mustTF(t, "1m")}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestResampleStoredRejectsFinerTarget(t *testing.T) {
	uc := NewBarsUseCase(&fakeTickStore{}, &fakeBarStore{})
	_, err := uc.ResampleStored(context.Background(), ResampleParams{
		Symbol: "EURUSD",
		Base:   mustTF(t, "15m"),
		Target: mustTF(t, "5m"),
	})
	if err == nil {
		t.Fatalf("expected error for target finer than base")
	}
}

func TestResampleStoredMerges(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	bars := &fakeBarStore{bars: []models.Bar{
		{Symbol: "EURUSD", Timestamp: base, Open: 1.0, High: 1.2, Low: 0.9, Close: 1.1, Volume: 3, TickCount: 5},
		{Symbol: "EURUSD", Timestamp: base.Add(5 * time.Minute), Open: 1.1, High: 1.3, Low: 1.0, Close: 1.2, Volume: 2, TickCount: 4},
	}}
	uc := NewBarsUseCase(&fakeTickStore{}, bars)

	out, err := uc.ResampleStored(context.Background(), ResampleParams{
		Symbol: "EURUSD",
		From:   base,
		To:     base.Add(15 * time.Minute),
		Base:   mustTF(t, "5m"),
		Target: mustTF(t, "15m"),
	})
	if err != nil {
		t.Fatalf("ResampleStored: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 merged bar, got %d", len(out))
	}
	b := out[0]
	if b.Open != 1.0 || b.Close != 1.2 || b.High != 1.3 || b.Low != 0.9 {
		t.Fatalf("unexpected OHLC %+v", b)
	}
	if b.Volume != 5 || b.TickCount != 9 {
		t.Fatalf("unexpected volume/tick count %v/%d", b.Volume, b.TickCount)
	}
}
