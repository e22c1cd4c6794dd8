package statistics

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"TickPull/internal/domain/models"
)

// ErrInsufficientData is returned when a moment statistic is requested
// with fewer data points than its minimum sample size. Moments never
// silently propagate NaN.
var ErrInsufficientData = errors.New("insufficient data")

// Compute summarizes spread, mid-price and returns distributions over a
// tick window. Empty input yields (nil, nil): absent, not an error.
//
// Ticks are taken in input order; unlike the aggregation engine this
// engine does not sort, so TimeRange reflects array positions, not
// chronology. The full report includes skewness and excess kurtosis of
// the returns series and therefore needs at least five ticks; the call
// fails atomically below that, with no partial report. Callers that can
// live with less should use SpreadSummary, PriceSummary and the moment
// functions directly.
func Compute(ticks []models.Tick) (*models.StatisticsReport, error) {
	if len(ticks) == 0 {
		return nil, nil
	}

	spread, err := summarize(SpreadSeries(ticks))
	if err != nil {
		return nil, fmt.Errorf("spread: %w", err)
	}
	price, err := summarize(MidSeries(ticks))
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	rets := Returns(MidSeries(ticks))
	retMean, err := Mean(rets)
	if err != nil {
		return nil, fmt.Errorf("returns mean: %w", err)
	}
	retStd, err := StdDev(rets)
	if err != nil {
		return nil, fmt.Errorf("returns std: %w", err)
	}
	skew, err := Skewness(rets)
	if err != nil {
		return nil, fmt.Errorf("returns skew: %w", err)
	}
	kurt, err := Kurtosis(rets)
	if err != nil {
		return nil, fmt.Errorf("returns kurtosis: %w", err)
	}

	return &models.StatisticsReport{
		Symbol:    ticks[0].Symbol,
		TickCount: len(ticks),
		TimeRange: models.TimeRange{
			From: ticks[0].Timestamp,
			To:   ticks[len(ticks)-1].Timestamp,
		},
		Spread: spread,
		Price:  price,
		Returns: models.MomentSummary{
			Mean:     retMean,
			Std:      retStd,
			Skew:     skew,
			Kurtosis: kurt,
		},
	}, nil
}

// SpreadSeries returns ask-bid per tick, in input order.
func SpreadSeries(ticks []models.Tick) []float64 {
	out := make([]float64, len(ticks))
	for i := range ticks {
		out[i] = ticks[i].SpreadValue()
	}
	return out
}

// MidSeries returns (bid+ask)/2 per tick, in input order.
func MidSeries(ticks []models.Tick) []float64 {
	out := make([]float64, len(ticks))
	for i := range ticks {
		out[i] = ticks[i].Mid()
	}
	return out
}

// Returns computes simple (non-log) relative returns between consecutive
// values: (v[i+1]-v[i])/v[i]. The result has length len(values)-1; a
// single value yields an empty series.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		out[i] = (values[i+1] - values[i]) / values[i]
	}
	return out
}

// SpreadSummary summarizes the spread distribution. Works from a single
// tick up (std of one value is zero).
func SpreadSummary(ticks []models.Tick) (models.DistSummary, error) {
	return summarize(SpreadSeries(ticks))
}

// PriceSummary summarizes the mid-price distribution.
func PriceSummary(ticks []models.Tick) (models.DistSummary, error) {
	return summarize(MidSeries(ticks))
}

func summarize(values []float64) (models.DistSummary, error) {
	data := stats.Float64Data(values)
	min, err := stats.Min(data)
	if err != nil {
		return models.DistSummary{}, ErrInsufficientData
	}
	max, err := stats.Max(data)
	if err != nil {
		return models.DistSummary{}, ErrInsufficientData
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return models.DistSummary{}, ErrInsufficientData
	}
	std, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return models.DistSummary{}, ErrInsufficientData
	}
	return models.DistSummary{Min: min, Max: max, Mean: mean, Std: std}, nil
}

// Mean is the arithmetic mean; requires at least one value.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// StdDev is the population standard deviation (squared-deviation sum
// divided by n, not n-1). The skewness and kurtosis adjustments below are
// calibrated to this standardization.
func StdDev(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values))), nil
}

// Skewness is the Fisher-Pearson adjusted sample skewness:
// (n/((n-1)(n-2))) * Σ((x-mean)/std)³. Requires n >= 3 and a non-zero
// standard deviation.
func Skewness(values []float64) (float64, error) {
	n := float64(len(values))
	if len(values) < 3 {
		return 0, ErrInsufficientData
	}
	mean, _ := Mean(values)
	std, _ := StdDev(values)
	if std == 0 {
		return 0, fmt.Errorf("%w: zero variance", ErrInsufficientData)
	}
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / std
		sum += z * z * z
	}
	return n / ((n - 1) * (n - 2)) * sum, nil
}

// Kurtosis is the adjusted sample excess kurtosis:
// (n(n+1)/((n-1)(n-2)(n-3))) * Σ((x-mean)/std)⁴ - 3(n-1)²/((n-2)(n-3)).
// Requires n >= 4 and a non-zero standard deviation. A normal
// distribution scores zero.
func Kurtosis(values []float64) (float64, error) {
	n := float64(len(values))
	if len(values) < 4 {
		return 0, ErrInsufficientData
	}
	mean, _ := Mean(values)
	std, _ := StdDev(values)
	if std == 0 {
		return 0, fmt.Errorf("%w: zero variance", ErrInsufficientData)
	}
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / std
		sum += z * z * z * z
	}
	return n*(n+1)/((n-1)*(n-2)*(n-3))*sum - 3*(n-1)*(n-1)/((n-2)*(n-3)), nil
}
