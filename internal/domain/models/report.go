package models

import "time"

// MarketReport is a consolidated view of bars and window statistics for
// one symbol and range. Parts that failed are reported in Errors instead
// of failing the whole report.
// Note: no transport (json/http) concerns here.
type MarketReport struct {
	Symbol     string
	Timeframe  string
	Timestamp  time.Time
	Bars       []Bar
	Statistics *StatisticsReport
	Features   *FeatureSummary
	Errors     map[string]string
}

// FeatureSummary carries bar-level derived features for a report window.
type FeatureSummary struct {
	LogReturnMean float64
	RealizedVol   float64
	Window        int
}
