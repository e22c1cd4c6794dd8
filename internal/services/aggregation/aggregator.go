package aggregation

import (
	"fmt"
	"sort"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
)

// AggregateTicks buckets a tick sequence into OHLCV bars at the given
// timeframe. The input is not mutated; a local copy is sorted ascending by
// timestamp before processing (tie order between equal timestamps is
// unspecified). Empty input yields an empty output, not an error.
//
// At most one aggregate is open at a time: a tick whose bucket start
// differs from the open aggregate's closes it and seeds a new one. The
// only flush trigger is end of sequence; empty buckets are not synthesized.
func AggregateTicks(ticks []models.Tick, tf domrepo.Timeframe) ([]models.Bar, error) {
	if tf.Minutes() <= 0 {
		return nil, fmt.Errorf("aggregate ticks: %w", domrepo.ErrInvalidTimeframe)
	}
	if len(ticks) == 0 {
		return []models.Bar{}, nil
	}

	sorted := make([]models.Tick, len(ticks))
	copy(sorted, ticks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	bars := make([]models.Bar, 0, len(sorted)/4+1)
	var open *models.Bar
	for i := range sorted {
		tk := &sorted[i]
		bucket := BucketStart(tk.Timestamp, tf)
		price := tk.Mid()

		if open == nil || !open.Timestamp.Equal(bucket) {
			if open != nil {
				bars = append(bars, *open)
			}
			open = &models.Bar{
				Symbol:    tk.Symbol,
				Timestamp: bucket,
				Open:      price,
				High:      price,
				Low:       price,
				Close:     price,
				Volume:    tickVolume(tk),
				TickCount: 1,
				Spread:    tk.SpreadValue(),
			}
			continue
		}

		if price > open.High {
			open.High = price
		}
		if price < open.Low {
			open.Low = price
		}
		open.Close = price
		open.TickCount++
		// Running mean, kept in this exact incremental form so results are
		// reproducible bit-for-bit.
		n := float64(open.TickCount)
		open.Spread = (open.Spread*(n-1) + tk.SpreadValue()) / n
		open.Volume += tickVolume(tk)
	}
	bars = append(bars, *open)
	return bars, nil
}

// ResampleBars merges already-aggregated bars into a coarser timeframe
// using the same bucketing and flush contract as AggregateTicks. Volume
// and tick counts are summed across contributing bars; spread is not
// tracked on a resampling pass.
func ResampleBars(bars []models.Bar, tf domrepo.Timeframe) ([]models.Bar, error) {
	if tf.Minutes() <= 0 {
		return nil, fmt.Errorf("resample bars: %w", domrepo.ErrInvalidTimeframe)
	}
	if len(bars) == 0 {
		return []models.Bar{}, nil
	}

	sorted := make([]models.Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := make([]models.Bar, 0, len(sorted)/4+1)
	var open *models.Bar
	for i := range sorted {
		b := &sorted[i]
		bucket := BucketStart(b.Timestamp, tf)

		if open == nil || !open.Timestamp.Equal(bucket) {
			if open != nil {
				out = append(out, *open)
			}
			open = &models.Bar{
				Symbol:    b.Symbol,
				Timestamp: bucket,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
				TickCount: b.TickCount,
			}
			continue
		}

		if b.High > open.High {
			open.High = b.High
		}
		if b.Low < open.Low {
			open.Low = b.Low
		}
		open.Close = b.Close
		open.Volume += b.Volume
		open.TickCount += b.TickCount
	}
	out = append(out, *open)
	return out, nil
}

func tickVolume(t *models.Tick) float64 {
	return (t.BidVolume + t.AskVolume) / 2
}
