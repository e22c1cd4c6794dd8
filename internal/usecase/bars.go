package usecase

import (
	"context"
	"fmt"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	"TickPull/internal/services/aggregation"
)

// BarsUseCase provides business logic for building bars out of raw ticks.
type BarsUseCase struct {
	ticks domrepo.TickStore
	bars  domrepo.BarStore
}

func NewBarsUseCase(ticks domrepo.TickStore, bars domrepo.BarStore) *BarsUseCase {
	return &BarsUseCase{ticks: ticks, bars: bars}
}

type GetBarsParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
	Limit     int
}

type GetBarsResult struct {
	Symbol    string
	Timeframe string
	From      time.Time
	To        time.Time
	Count     int
	Bars      []models.Bar
	// Ticks is populated instead of Bars for the "tick" pass-through sentinel.
	Ticks []models.Tick
}

const (
	defaultBarLimit = 10000
	maxBarLimit     = 50000
	maxTickWindow   = 1_000_000
)

func (uc *BarsUseCase) GetBars(ctx context.Context, p GetBarsParams) (*GetBarsResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = defaultBarLimit
	}
	if p.Limit > maxBarLimit {
		p.Limit = maxBarLimit
	}

	ticks, err := uc.ticks.GetTicks(ctx, p.Symbol, p.From, p.To, maxTickWindow)
	if err != nil {
		return nil, fmt.Errorf("get ticks: %w", err)
	}

	res := &GetBarsResult{
		Symbol:    p.Symbol,
		Timeframe: p.Timeframe.String(),
		From:      p.From,
		To:        p.To,
	}

	// "tick" passes the raw observations through untouched.
	if p.Timeframe.IsTick() {
		if len(ticks) > p.Limit {
			ticks = ticks[:p.Limit]
		}
		res.Ticks = ticks
		res.Count = len(ticks)
		return res, nil
	}

	bars, err := aggregation.AggregateTicks(ticks, p.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if len(bars) > p.Limit {
		bars = bars[:p.Limit]
	}
	res.Bars = bars
	res.Count = len(bars)
	return res, nil
}

type ResampleParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Base   domrepo.Timeframe
	Target domrepo.Timeframe
}

// ResampleStored reads persisted bars at the base timeframe and merges
// them into the coarser target. Spread is not carried across a resample.
func (uc *BarsUseCase) ResampleStored(ctx context.Context, p ResampleParams) ([]models.Bar, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Base.IsTick() || p.Target.IsTick() {
		return nil, fmt.Errorf("resample: %w", domrepo.ErrInvalidTimeframe)
	}
	if p.Target.Minutes() < p.Base.Minutes() {
		return nil, fmt.Errorf("resample: target %s finer than base %s", p.Target, p.Base)
	}

	base, err := uc.bars.GetBars(ctx, p.Symbol, p.From, p.To, p.Base)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	out, err := aggregation.ResampleBars(base, p.Target)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return out, nil
}
