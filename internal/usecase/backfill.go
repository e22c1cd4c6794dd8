package usecase

import (
	"context"
	"fmt"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	domsvc "TickPull/internal/domain/service"
)

// BackfillUseCase pulls historical ticks from the vendor API and loads
// them into storage, one day-sized chunk at a time.
type BackfillUseCase struct {
	provider domsvc.TickHistoryProvider
	storage  domrepo.Storage
	chunk    time.Duration
}

func NewBackfillUseCase(provider domsvc.TickHistoryProvider, storage domrepo.Storage) *BackfillUseCase {
	return &BackfillUseCase{provider: provider, storage: storage, chunk: 24 * time.Hour}
}

type BackfillParams struct {
	Symbols []string
	From    time.Time
	To      time.Time
}

// BackfillResult reports loaded tick counts per symbol.
type BackfillResult struct {
	Loaded map[string]int
}

// Run fetches and stores ticks for every symbol in the window. A failed
// chunk aborts the run; already-stored chunks stay stored.
func (uc *BackfillUseCase) Run(ctx context.Context, p BackfillParams) (*BackfillResult, error) {
	if len(p.Symbols) == 0 {
		return nil, fmt.Errorf("symbols required")
	}
	if !p.To.After(p.From) {
		return nil, fmt.Errorf("empty window")
	}

	res := &BackfillResult{Loaded: make(map[string]int, len(p.Symbols))}
	for _, sym := range p.Symbols {
		for start := p.From; start.Before(p.To); start = start.Add(uc.chunk) {
			end := start.Add(uc.chunk)
			if end.After(p.To) {
				end = p.To
			}
			ticks, err := uc.provider.FetchTicks(ctx, sym, start, end)
			if err != nil {
				return res, fmt.Errorf("backfill %s [%s, %s): %w",
					sym, start.Format(time.RFC3339), end.Format(time.RFC3339), err)
			}
			if len(ticks) == 0 {
				continue
			}
			batch := make([]*models.Tick, len(ticks))
			for i := range ticks {
				batch[i] = &ticks[i]
			}
			if err := uc.storage.StoreBatch(ctx, batch); err != nil {
				return res, fmt.Errorf("backfill store %s: %w", sym, err)
			}
			res.Loaded[sym] += len(ticks)
		}
	}
	return res, nil
}
