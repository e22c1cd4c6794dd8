package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"TickPull/internal/domain/models"
)

type countProc struct {
	calls int
	err   error
}

func (p *countProc) Process(_ context.Context, _ *models.Tick) error {
	p.calls++
	return p.err
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string)  {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}

func validTick() *models.Tick {
	return &models.Tick{
		Symbol:    "EURUSD",
		Timestamp: time.Now(),
		Bid:       1.10,
		Ask:       1.11,
		BidVolume: 1,
		AskVolume: 2,
	}
}

func TestPipelineForwardsValidTick(t *testing.T) {
	proc := &countProc{}
	p := NewTickPipeline(proc, nopMetrics{})
	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected 1 downstream call, got %d", proc.calls)
	}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	proc := &countProc{}
	p := NewTickPipeline(proc, nopMetrics{})

	cases := []*models.Tick{
		nil,
		{Timestamp: time.Now(), Bid: 1, Ask: 1.1},                                  // no symbol
		{Symbol: "EURUSD", Bid: 1, Ask: 1.1},                                       // no timestamp
		{Symbol: "EURUSD", Timestamp: time.Now(), Bid: 0, Ask: 1.1},                // zero bid
		{Symbol: "EURUSD", Timestamp: time.Now(), Bid: 1.2, Ask: 1.1},              // crossed
		{Symbol: "EURUSD", Timestamp: time.Now(), Bid: 1, Ask: 1.1, BidVolume: -1}, // negative volume
	}
	for i, tk := range cases {
		if err := p.Process(context.Background(), tk); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.calls != 0 {
		t.Fatalf("invalid ticks must not reach downstream, got %d calls", proc.calls)
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &countProc{}
	p := NewTickPipeline(proc, nopMetrics{}, WithMaxRPS(1))

	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	// immediate second tick for the same symbol is dropped, not an error
	if err := p.Process(context.Background(), validTick()); err != nil {
		t.Fatalf("throttled tick should not error: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected 1 accepted tick, got %d", proc.calls)
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &countProc{err: errors.New("down")}
	p := NewTickPipeline(proc, nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTick()); err == nil {
		t.Fatalf("expected downstream error to surface")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected tick buffered for retry, got %d", len(p.bufCh))
	}
}
