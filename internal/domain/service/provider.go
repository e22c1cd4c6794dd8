package service

import (
	"context"
	"time"

	"TickPull/internal/domain/models"
)

// TickHistoryProvider fetches historical quote ticks from an external
// market-data vendor.
type TickHistoryProvider interface {
	FetchTicks(ctx context.Context, symbol string, from, to time.Time) ([]models.Tick, error)
}
