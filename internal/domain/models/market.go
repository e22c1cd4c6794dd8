package models

import "time"

// Tick is a single bid/ask observation. Volumes may be zero when the
// upstream feed does not report them; a zero pair contributes no volume
// to aggregated bars.
type Tick struct {
	Symbol    string
	Timestamp time.Time
	Bid       float64
	Ask       float64
	BidVolume float64
	AskVolume float64
}

// Mid returns the mid-price (bid+ask)/2.
func (t Tick) Mid() float64 { return (t.Bid + t.Ask) / 2 }

// SpreadValue returns ask-bid.
func (t Tick) SpreadValue() float64 { return t.Ask - t.Bid }

// Bar is an OHLCV aggregate over one epoch-aligned bucket. Timestamp is
// always the bucket start, never a raw tick timestamp. Spread is the mean
// spread of contributing ticks and is only populated when the bar was
// built from ticks; resampled bars carry zero.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	TickCount int
	Spread    float64
}

// TimeRange is the [From, To] span of a tick window, taken by input
// position rather than chronological min/max.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// DistSummary summarizes a distribution of values.
type DistSummary struct {
	Min  float64
	Max  float64
	Mean float64
	Std  float64
}

// MomentSummary carries the first four standardized moments of the
// returns series (Std is population-style, Kurtosis is excess).
type MomentSummary struct {
	Mean     float64
	Std      float64
	Skew     float64
	Kurtosis float64
}

// StatisticsReport describes spread, mid-price and returns distributions
// over a tick window.
type StatisticsReport struct {
	Symbol    string
	TickCount int
	TimeRange TimeRange
	Spread    DistSummary
	Price     DistSummary
	Returns   MomentSummary
}
