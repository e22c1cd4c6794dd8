package features

import (
	"math"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}) over bar
// closes. It returns a slice of length len(bars)-1, or nil if insufficient
// data.
func ComputeLogReturns(bars []models.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over a rolling
// window using the provided number of bars per year. Returns the latest
// window sigma.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	// annualize
	return math.Sqrt(variance * barsPerYear)
}

const minutesPerYear = 365 * 24 * 60

// BarsPerYear returns the approximate number of bars per year for a
// timeframe. Tick sentinel yields 0.
func BarsPerYear(tf domrepo.Timeframe) float64 {
	m := tf.Minutes()
	if m <= 0 {
		return 0
	}
	return minutesPerYear / float64(m)
}

// Summarize derives the bar-level feature block for a report window.
// Returns nil when fewer than two bars are available.
func Summarize(bars []models.Bar, tf domrepo.Timeframe) *models.FeatureSummary {
	rets := ComputeLogReturns(bars)
	if rets == nil {
		return nil
	}
	sum := 0.0
	for _, r := range rets {
		sum += r
	}
	window := len(rets)
	return &models.FeatureSummary{
		LogReturnMean: sum / float64(len(rets)),
		RealizedVol:   RealizedVolatility(rets, window, BarsPerYear(tf)),
		Window:        window,
	}
}
