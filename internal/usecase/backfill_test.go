package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"TickPull/internal/domain/models"
)

type fakeProvider struct {
	calls int
	fail  bool
}

func (f *fakeProvider) FetchTicks(_ context.Context, symbol string, from, _ time.Time) ([]models.Tick, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("vendor down")
	}
	return []models.Tick{
		{Symbol: symbol, Timestamp: from, Bid: 1.10, Ask: 1.11},
		{Symbol: symbol, Timestamp: from.Add(time.Second), Bid: 1.11, Ask: 1.12},
	}, nil
}

type fakeStorage struct {
	stored int
}

func (f *fakeStorage) Init(context.Context) error              { return nil }
func (f *fakeStorage) Store(context.Context, *models.Tick) error { f.stored++; return nil }
func (f *fakeStorage) StoreBatch(_ context.Context, ticks []*models.Tick) error {
	f.stored += len(ticks)
	return nil
}
func (f *fakeStorage) Health(context.Context) error { return nil }
func (f *fakeStorage) Close() error                 { return nil }

func TestBackfillRunChunksByDay(t *testing.T) {
	prov := &fakeProvider{}
	store := &fakeStorage{}
	uc := NewBackfillUseCase(prov, store)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(3 * 24 * time.Hour)
	res, err := uc.Run(context.Background(), BackfillParams{
		Symbols: []string{"EURUSD"},
		From:    from,
		To:      to,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if prov.calls != 3 {
		t.Fatalf("expected 3 day chunks, got %d", prov.calls)
	}
	if res.Loaded["EURUSD"] != 6 {
		t.Fatalf("expected 6 loaded ticks, got %d", res.Loaded["EURUSD"])
	}
	if store.stored != 6 {
		t.Fatalf("expected 6 stored ticks, got %d", store.stored)
	}
}

func TestBackfillRunValidation(t *testing.T) {
	uc := NewBackfillUseCase(&fakeProvider{}, &fakeStorage{})
	now := time.Now()
	if _, err := uc.Run(context.Background(), BackfillParams{From: now.Add(-time.Hour), To: now}); err == nil {
		t.Fatalf("expected error for no symbols")
	}
	if _, err := uc.Run(context.Background(), BackfillParams{Symbols: []string{"EURUSD"}, From: now, To: now}); err == nil {
		t.Fatalf("expected error for empty window")
	}
}

func TestBackfillRunProviderError(t *testing.T) {
	uc := NewBackfillUseCase(&fakeProvider{fail: true}, &fakeStorage{})
	now := time.Now()
	if _, err := uc.Run(context.Background(), BackfillParams{
		Symbols: []string{"EURUSD"},
		From:    now.Add(-time.Hour),
		To:      now,
	}); err == nil {
		t.Fatalf("expected provider error to abort run")
	}
}
