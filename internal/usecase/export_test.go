package usecase

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"TickPull/internal/domain/models"
)

func exportFixture(t *testing.T) (*ExportUseCase, time.Time) {
	t.Helper()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeTickStore{ticks: []models.Tick{
		{Symbol: "EURUSD", Timestamp: base, Bid: 1.10, Ask: 1.11, BidVolume: 2, AskVolume: 4},
		{Symbol: "EURUSD", Timestamp: base.Add(90 * time.Second), Bid: 1.12, Ask: 1.13},
	}}
	bars := NewBarsUseCase(store, &fakeBarStore{})
	return NewExportUseCase(bars, t.TempDir()), base
}

func TestExportBarsCSV(t *testing.T) {
	uc, base := exportFixture(t)
	path, err := uc.ExportBars(context.Background(), ExportParams{
		Symbol:    "EURUSD",
		From:      base,
		To:        base.Add(5 * time.Minute),
		Timeframe: mustTF(t, "1m"),
		Format:    "csv",
	})
	if err != nil {
		t.Fatalf("ExportBars: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 { // header + 2 bars
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "timestamp,symbol,open") {
		t.Fatalf("unexpected header %q", lines[0])
	}
}

func TestExportBarsJSON(t *testing.T) {
	uc, base := exportFixture(t)
	path, err := uc.ExportBars(context.Background(), ExportParams{
		Symbol:    "EURUSD",
		From:      base,
		To:        base.Add(5 * time.Minute),
		Timeframe: mustTF(t, "1m"),
		Format:    "json",
	})
	if err != nil {
		t.Fatalf("ExportBars: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(b, &rows); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["symbol"] != "EURUSD" {
		t.Fatalf("unexpected row %v", rows[0])
	}
}

func TestExportJobHandle(t *testing.T) {
	uc, base := exportFixture(t)
	job := NewExportJob(uc)
	if job.Type() != ExportJobType {
		t.Fatalf("unexpected job type %q", job.Type())
	}
	err := job.Handle(context.Background(), map[string]interface{}{
		"symbol": "EURUSD",
		"from":   base.Format(time.RFC3339),
		"to":     base.Add(5 * time.Minute).Format(time.RFC3339),
		"tf":     "1m",
		"format": "csv",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestExportJobBadTimeframe(t *testing.T) {
	uc, base := exportFixture(t)
	job := NewExportJob(uc)
	err := job.Handle(context.Background(), map[string]interface{}{
		"symbol": "EURUSD",
		"from":   base.Format(time.RFC3339),
		"to":     base.Add(time.Minute).Format(time.RFC3339),
		"tf":     "7x",
		"format": "csv",
	})
	if err == nil {
		t.Fatalf("expected invalid timeframe error")
	}
}
