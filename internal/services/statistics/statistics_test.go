package statistics

import (
	"errors"
	"math"
	"testing"
	"time"

	"TickPull/internal/domain/models"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func mkTicks(mids ...float64) []models.Tick {
	base := time.Unix(0, 0).UTC()
	ticks := make([]models.Tick, len(mids))
	for i, m := range mids {
		// symmetric spread of 0.01 around the mid
		ticks[i] = models.Tick{
			Symbol:    "EURUSD",
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Bid:       m - 0.005,
			Ask:       m + 0.005,
		}
	}
	return ticks
}

func TestComputeEmpty(t *testing.T) {
	rep, err := Compute(nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if rep != nil {
		t.Fatalf("expected nil report for empty input")
	}
}

func TestReturnsSeries(t *testing.T) {
	rets := Returns([]float64{1.0, 1.01, 0.99})
	if len(rets) != 2 {
		t.Fatalf("length %d", len(rets))
	}
	if !approx(rets[0], 0.01, 1e-12) {
		t.Fatalf("rets[0] = %v", rets[0])
	}
	if !approx(rets[1], -0.0198019801980198, 1e-12) {
		t.Fatalf("rets[1] = %v", rets[1])
	}
	m, err := Mean(rets)
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	if !approx(m, -0.0049009900990099, 1e-12) {
		t.Fatalf("mean = %v", m)
	}
}

func TestReturnsSingleValue(t *testing.T) {
	rets := Returns([]float64{1.0})
	if len(rets) != 0 {
		t.Fatalf("expected empty series, got %v", rets)
	}
	if _, err := Mean(rets); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSingleTickSummaries(t *testing.T) {
	ticks := mkTicks(1.105)

	sp, err := SpreadSummary(ticks)
	if err != nil {
		t.Fatalf("spread summary: %v", err)
	}
	if !approx(sp.Min, 0.01, 1e-12) || !approx(sp.Max, 0.01, 1e-12) || !approx(sp.Mean, 0.01, 1e-12) {
		t.Fatalf("spread summary %+v", sp)
	}
	if sp.Std != 0 {
		t.Fatalf("std of a single value should be zero, got %v", sp.Std)
	}

	pr, err := PriceSummary(ticks)
	if err != nil {
		t.Fatalf("price summary: %v", err)
	}
	if !approx(pr.Mean, 1.105, 1e-12) || pr.Std != 0 {
		t.Fatalf("price summary %+v", pr)
	}

	// Higher moments are unavailable on one tick.
	if _, err := Skewness(Returns(MidSeries(ticks))); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for skew, got %v", err)
	}
	if _, err := Compute(ticks); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected atomic Compute failure, got %v", err)
	}
}

func TestStdDevPopulation(t *testing.T) {
	// Population std divides by n, not n-1.
	std, err := StdDev([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("std: %v", err)
	}
	if !approx(std, math.Sqrt(1.25), 1e-12) {
		t.Fatalf("std = %v", std)
	}
}

func TestSkewnessAdjusted(t *testing.T) {
	got, err := Skewness([]float64{1, 2, 6})
	if err != nil {
		t.Fatalf("skew: %v", err)
	}
	if !approx(got, 2.678265288627738, 1e-12) {
		t.Fatalf("skew = %v", got)
	}
	if _, err := Skewness([]float64{1, 2}); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for n=2, got %v", err)
	}
}

func TestKurtosisExcess(t *testing.T) {
	got, err := Kurtosis([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("kurtosis: %v", err)
	}
	if !approx(got, 8.36666666666667, 1e-12) {
		t.Fatalf("kurtosis = %v", got)
	}
	if _, err := Kurtosis([]float64{1, 2, 3}); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for n=3, got %v", err)
	}
}

func TestZeroVarianceMoments(t *testing.T) {
	flat := []float64{2, 2, 2, 2, 2}
	if _, err := Skewness(flat); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected zero-variance failure, got %v", err)
	}
	if _, err := Kurtosis(flat); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected zero-variance failure, got %v", err)
	}
}

func TestComputeFullReport(t *testing.T) {
	ticks := mkTicks(1.0, 1.01, 0.99, 1.02, 0.98, 1.03)
	rep, err := Compute(ticks)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if rep.TickCount != 6 {
		t.Fatalf("tick count %d", rep.TickCount)
	}
	if !rep.TimeRange.From.Equal(ticks[0].Timestamp) || !rep.TimeRange.To.Equal(ticks[5].Timestamp) {
		t.Fatalf("time range %+v", rep.TimeRange)
	}
	if !approx(rep.Price.Min, 0.98, 1e-12) || !approx(rep.Price.Max, 1.03, 1e-12) {
		t.Fatalf("price summary %+v", rep.Price)
	}
	if !approx(rep.Spread.Mean, 0.01, 1e-12) {
		t.Fatalf("spread summary %+v", rep.Spread)
	}

	rets := Returns(MidSeries(ticks))
	wantMean, _ := Mean(rets)
	if rep.Returns.Mean != wantMean {
		t.Fatalf("returns mean %v, want %v", rep.Returns.Mean, wantMean)
	}
}

func TestComputeInputOrderTimeRange(t *testing.T) {
	// The statistics engine does not sort: TimeRange is by input position.
	base := time.Unix(0, 0).UTC()
	ticks := mkTicks(1.0, 1.01, 0.99, 1.02, 0.98, 1.03)
	ticks[0].Timestamp = base.Add(time.Hour)
	ticks[5].Timestamp = base

	rep, err := Compute(ticks)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !rep.TimeRange.From.Equal(base.Add(time.Hour)) || !rep.TimeRange.To.Equal(base) {
		t.Fatalf("time range should follow input order, got %+v", rep.TimeRange)
	}
}
