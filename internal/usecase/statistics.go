package usecase

import (
	"context"
	"fmt"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	"TickPull/internal/services/statistics"
)

// StatisticsUseCase computes window statistics over persisted ticks.
type StatisticsUseCase struct {
	ticks domrepo.TickStore
}

func NewStatisticsUseCase(ticks domrepo.TickStore) *StatisticsUseCase {
	return &StatisticsUseCase{ticks: ticks}
}

type GetStatisticsParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

// GetStatistics returns (nil, nil) when the window holds no ticks;
// callers must treat the report as absent. ErrInsufficientData surfaces
// unchanged so the transport layer can map it to a client error.
func (uc *StatisticsUseCase) GetStatistics(ctx context.Context, p GetStatisticsParams) (*models.StatisticsReport, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 || p.Limit > maxTickWindow {
		p.Limit = maxTickWindow
	}

	ticks, err := uc.ticks.GetTicks(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get ticks: %w", err)
	}

	rep, err := statistics.Compute(ticks)
	if err != nil {
		return nil, err
	}
	return rep, nil
}
