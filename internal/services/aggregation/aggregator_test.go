package aggregation

import (
	"errors"
	"math"
	"testing"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
)

func tick(at time.Time, bid, ask float64) models.Tick {
	return models.Tick{Symbol: "EURUSD", Timestamp: at, Bid: bid, Ask: ask}
}

func TestAggregateTicksEmpty(t *testing.T) {
	bars, err := AggregateTicks(nil, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected empty output, got %d bars", len(bars))
	}
}

func TestAggregateTicksTickSentinel(t *testing.T) {
	ticks := []models.Tick{tick(time.Unix(0, 0), 1.10, 1.11)}
	if _, err := AggregateTicks(ticks, domrepo.TickTimeframe); !errors.Is(err, domrepo.ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
	}
}

func TestAggregateSingleTick(t *testing.T) {
	at := time.Date(2024, 10, 10, 10, 0, 42, 0, time.UTC)
	bars, err := AggregateTicks([]models.Tick{tick(at, 1.10, 1.11)}, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected one bar, got %d", len(bars))
	}
	b := bars[0]
	mid := (1.10 + 1.11) / 2
	if b.Open != mid || b.High != mid || b.Low != mid || b.Close != mid {
		t.Fatalf("expected flat OHLC at %v, got %+v", mid, b)
	}
	if b.TickCount != 1 {
		t.Fatalf("tick count %d", b.TickCount)
	}
	want := time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)
	if !b.Timestamp.Equal(want) {
		t.Fatalf("bar timestamp %v, want bucket start %v", b.Timestamp, want)
	}
}

func TestAggregateTwoBuckets(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := []models.Tick{
		tick(base, 1.10, 1.11),
		tick(base.Add(30*time.Second), 1.12, 1.13),
		tick(base.Add(90*time.Second), 1.11, 1.12),
	}
	bars, err := AggregateTicks(ticks, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}

	b0 := bars[0]
	if !b0.Timestamp.Equal(base) {
		t.Fatalf("bar0 timestamp %v", b0.Timestamp)
	}
	if b0.Open != 1.105 || b0.Close != 1.125 || b0.High != 1.125 || b0.Low != 1.105 {
		t.Fatalf("bar0 OHLC %+v", b0)
	}
	if b0.TickCount != 2 {
		t.Fatalf("bar0 tick count %d", b0.TickCount)
	}

	b1 := bars[1]
	if !b1.Timestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("bar1 timestamp %v", b1.Timestamp)
	}
	mid := (1.11 + 1.12) / 2
	if b1.Open != mid || b1.High != mid || b1.Low != mid || b1.Close != mid {
		t.Fatalf("bar1 OHLC %+v", b1)
	}
	if b1.TickCount != 1 {
		t.Fatalf("bar1 tick count %d", b1.TickCount)
	}
}

func TestAggregateSpreadRunningMean(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := []models.Tick{
		tick(base, 1.10, 1.11),
		tick(base.Add(10*time.Second), 1.12, 1.13),
		tick(base.Add(20*time.Second), 1.11, 1.14),
	}
	bars, err := AggregateTicks(ticks, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}

	// The documented recurrence, applied step by step: bit-for-bit equality.
	want := ticks[0].SpreadValue()
	want = (want*1 + ticks[1].SpreadValue()) / 2
	want = (want*2 + ticks[2].SpreadValue()) / 3
	if bars[0].Spread != want {
		t.Fatalf("spread %v, want %v", bars[0].Spread, want)
	}
}

func TestAggregateVolume(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := []models.Tick{
		{Symbol: "EURUSD", Timestamp: base, Bid: 1.10, Ask: 1.11, BidVolume: 2, AskVolume: 4},
		{Symbol: "EURUSD", Timestamp: base.Add(time.Second), Bid: 1.10, Ask: 1.11},
		{Symbol: "EURUSD", Timestamp: base.Add(2 * time.Second), Bid: 1.10, Ask: 1.11, BidVolume: 1, AskVolume: 1},
	}
	bars, err := AggregateTicks(ticks, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	// (2+4)/2 + 0 + (1+1)/2
	if bars[0].Volume != 4 {
		t.Fatalf("volume %v, want 4", bars[0].Volume)
	}
}

func TestAggregateUnsortedInput(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := []models.Tick{
		tick(base.Add(90*time.Second), 1.11, 1.12),
		tick(base, 1.10, 1.11),
		tick(base.Add(30*time.Second), 1.12, 1.13),
	}
	orig := ticks[0]
	bars, err := AggregateTicks(ticks, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Timestamp.Before(bars[i].Timestamp) {
			t.Fatalf("bucket starts not strictly ascending: %v then %v", bars[i-1].Timestamp, bars[i].Timestamp)
		}
	}
	if bars[0].Open != 1.105 {
		t.Fatalf("open %v should come from the chronologically first tick", bars[0].Open)
	}
	if ticks[0] != orig {
		t.Fatalf("input slice was mutated")
	}
}

func TestAggregateNoEmptyBuckets(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := []models.Tick{
		tick(base, 1.10, 1.11),
		tick(base.Add(10*time.Minute), 1.12, 1.13),
	}
	bars, err := AggregateTicks(ticks, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars with no forward-filling, got %d", len(bars))
	}
}

func TestResampleMatchesDirectAggregation(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := make([]models.Tick, 0, 120)
	for i := 0; i < 120; i++ {
		bid := 1.10 + 0.0001*float64(i%17) - 0.0002*float64(i%5)
		ticks = append(ticks, models.Tick{
			Symbol:    "EURUSD",
			Timestamp: base.Add(time.Duration(i) * 37 * time.Second),
			Bid:       bid,
			Ask:       bid + 0.0001,
			BidVolume: float64(i % 3),
			AskVolume: float64(i % 7),
		})
	}

	direct, err := AggregateTicks(ticks, tfOrDie(t, "15m"))
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	fine, err := AggregateTicks(ticks, tfOrDie(t, "5m"))
	if err != nil {
		t.Fatalf("fine: %v", err)
	}
	resampled, err := ResampleBars(fine, tfOrDie(t, "15m"))
	if err != nil {
		t.Fatalf("resample: %v", err)
	}

	if len(direct) != len(resampled) {
		t.Fatalf("bar count %d vs %d", len(direct), len(resampled))
	}
	for i := range direct {
		d, r := direct[i], resampled[i]
		if !d.Timestamp.Equal(r.Timestamp) {
			t.Fatalf("bar %d timestamp %v vs %v", i, d.Timestamp, r.Timestamp)
		}
		if d.Open != r.Open || d.High != r.High || d.Low != r.Low || d.Close != r.Close {
			t.Fatalf("bar %d OHLC mismatch: %+v vs %+v", i, d, r)
		}
		if math.Abs(d.Volume-r.Volume) > 1e-9 {
			t.Fatalf("bar %d volume %v vs %v", i, d.Volume, r.Volume)
		}
		if d.TickCount != r.TickCount {
			t.Fatalf("bar %d tick count %d vs %d", i, d.TickCount, r.TickCount)
		}
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := ResampleBars(nil, tfOrDie(t, "1h"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output")
	}
}

func TestBarInvariantDuringAggregation(t *testing.T) {
	base := time.Unix(0, 0).UTC()
	ticks := make([]models.Tick, 0, 50)
	for i := 0; i < 50; i++ {
		bid := 1.20 + 0.001*math.Sin(float64(i))
		ticks = append(ticks, tick(base.Add(time.Duration(i)*time.Second), bid, bid+0.0002))
	}
	bars, err := AggregateTicks(ticks, tfOrDie(t, "1m"))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	for _, b := range bars {
		if b.Low > math.Min(b.Open, b.Close) || b.High < math.Max(b.Open, b.Close) {
			t.Fatalf("OHLC invariant violated: %+v", b)
		}
		if b.TickCount < 1 {
			t.Fatalf("tick count %d", b.TickCount)
		}
	}
}
