package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	"TickPull/internal/services/features"
)

// MarketReportUseCase assembles bars and statistics for one window in a
// single response. The two parts run concurrently; a failed part ends up
// in Errors rather than failing the report.
type MarketReportUseCase struct {
	bars    *BarsUseCase
	stats   *StatisticsUseCase
	timeout time.Duration
}

func NewMarketReportUseCase(bars *BarsUseCase, stats *StatisticsUseCase) *MarketReportUseCase {
	return &MarketReportUseCase{bars: bars, stats: stats, timeout: 10 * time.Second}
}

type GetReportParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
}

func (uc *MarketReportUseCase) GetReport(ctx context.Context, p GetReportParams) (*models.MarketReport, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.MarketReport{
		Symbol:    p.Symbol,
		Timeframe: p.Timeframe.String(),
		Timestamp: time.Now(),
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.bars.GetBars(ctx, GetBarsParams{
			Symbol:    p.Symbol,
			From:      p.From,
			To:        p.To,
			Timeframe: p.Timeframe,
		})
		ch <- item{"bars", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.stats.GetStatistics(ctx, GetStatisticsParams{
			Symbol: p.Symbol,
			From:   p.From,
			To:     p.To,
		})
		ch <- item{"statistics", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "bars":
			if v := it.val.(*GetBarsResult); v != nil {
				res.Bars = v.Bars
			}
		case "statistics":
			// nil means no data in the window; leave the field absent.
			res.Statistics = it.val.(*models.StatisticsReport)
		}
	}

	if len(res.Bars) > 0 && !p.Timeframe.IsTick() {
		res.Features = features.Summarize(res.Bars, p.Timeframe)
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
