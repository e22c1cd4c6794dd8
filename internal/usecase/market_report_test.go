package usecase

import (
	"context"
	"testing"
	"time"

	"TickPull/internal/domain/models"
)

func TestGetReportAssemblesParts(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ticks := make([]models.Tick, 0, 10)
	for i := 0; i < 10; i++ {
		ticks = append(ticks, models.Tick{
			Symbol:    "EURUSD",
			Timestamp: base.Add(time.Duration(i) * 30 * time.Second),
			Bid:       1.10 + float64(i)*0.001,
			Ask:       1.11 + float64(i)*0.001,
		})
	}
	store := &fakeTickStore{ticks: ticks}
	bars := NewBarsUseCase(store, &fakeBarStore{})
	stats := NewStatisticsUseCase(store)
	uc := NewMarketReportUseCase(bars, stats)

	rep, err := uc.GetReport(context.Background(), GetReportParams{
		Symbol:    "EURUSD",
		From:      base,
		To:        base.Add(10 * time.Minute),
		Timeframe: mustTF(t, "1m"),
	})
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if rep.Errors != nil {
		t.Fatalf("unexpected part errors %v", rep.Errors)
	}
	if len(rep.Bars) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(rep.Bars))
	}
	if rep.Statistics == nil || rep.Statistics.TickCount != 10 {
		t.Fatalf("unexpected statistics %+v", rep.Statistics)
	}
	if rep.Features == nil || rep.Features.Window != 4 {
		t.Fatalf("unexpected features %+v", rep.Features)
	}
}

func TestGetReportEmptyWindow(t *testing.T) {
	store := &fakeTickStore{}
	uc := NewMarketReportUseCase(NewBarsUseCase(store, &fakeBarStore{}), NewStatisticsUseCase(store))

	rep, err := uc.GetReport(context.Background(), GetReportParams{
		Symbol:    "EURUSD",
		From:      time.Now().Add(-time.Hour),
		To:        time.Now(),
		Timeframe: mustTF(t, "1m"),
	})
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if rep.Statistics != nil {
		t.Fatalf("statistics should be absent for an empty window")
	}
	if rep.Errors != nil {
		t.Fatalf("empty window is not an error, got %v", rep.Errors)
	}
}
