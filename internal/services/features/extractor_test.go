package features

import (
	"math"
	"testing"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
)

func TestComputeLogReturns(t *testing.T) {
	bars := []models.Bar{
		{Close: 100},
		{Close: 110},
		{Close: 99},
	}
	rets := ComputeLogReturns(bars)
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if math.Abs(rets[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("unexpected first return %v", rets[0])
	}
	if math.Abs(rets[1]-math.Log(0.9)) > 1e-12 {
		t.Fatalf("unexpected second return %v", rets[1])
	}
}

func TestComputeLogReturnsInsufficient(t *testing.T) {
	if ComputeLogReturns([]models.Bar{{Close: 100}}) != nil {
		t.Fatalf("single bar should yield nil")
	}
}

func TestBarsPerYear(t *testing.T) {
	tf, err := domrepo.ParseTimeframe("1m")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := BarsPerYear(tf); got != 365*24*60 {
		t.Fatalf("unexpected bars per year %v", got)
	}
	if got := BarsPerYear(domrepo.TickTimeframe); got != 0 {
		t.Fatalf("tick sentinel should yield 0, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Timestamp: base, Close: 100},
		{Timestamp: base.Add(time.Minute), Close: 101},
		{Timestamp: base.Add(2 * time.Minute), Close: 102},
	}
	tf, err := domrepo.ParseTimeframe("1m")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fs := Summarize(bars, tf)
	if fs == nil {
		t.Fatalf("expected a summary")
	}
	if fs.Window != 2 {
		t.Fatalf("unexpected window %d", fs.Window)
	}
	want := (math.Log(101.0/100.0) + math.Log(102.0/101.0)) / 2
	if math.Abs(fs.LogReturnMean-want) > 1e-12 {
		t.Fatalf("unexpected mean %v want %v", fs.LogReturnMean, want)
	}
	if fs.RealizedVol <= 0 {
		t.Fatalf("expected positive realized vol, got %v", fs.RealizedVol)
	}
}

func TestSummarizeTooFewBars(t *testing.T) {
	tf, err := domrepo.ParseTimeframe("1m")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if Summarize([]models.Bar{{Close: 100}}, tf) != nil {
		t.Fatalf("expected nil summary")
	}
}
