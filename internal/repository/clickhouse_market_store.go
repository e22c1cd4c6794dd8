package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	pkgch "TickPull/pkg/clickhouse"
	applogger "TickPull/pkg/logger"
)

// CHMarketStore implements TickStore and BarStore backed by ClickHouse.
// Raw ticks feed the aggregation and statistics engines; persisted base
// bars feed the resampler.
type CHMarketStore struct {
	db        *sql.DB
	tickTable string
	barTable  string
	l         *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client, tickTable, barTable string) *CHMarketStore {
	return &CHMarketStore{db: ch.DB(), tickTable: tickTable, barTable: barTable}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketStore) GetTicks(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Tick, error) {
	start := time.Now()
	const qtpl = `
        SELECT ts, symbol, bid, ask, bid_vol, ask_vol
        FROM %s
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.tickTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_ticks query error",
				applogger.String("table", s.tickTable),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get ticks: %w", err)
	}
	defer rows.Close()

	out := make([]models.Tick, 0, 1024)
	for rows.Next() {
		var t models.Tick
		if err := rows.Scan(&t.Timestamp, &t.Symbol, &t.Bid, &t.Ask, &t.BidVolume, &t.AskVolume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_ticks scan error",
					applogger.String("table", s.tickTable),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_ticks rows error",
				applogger.String("table", s.tickTable),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_ticks ok",
			applogger.String("table", s.tickTable),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHMarketStore) GetBars(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Bar, error) {
	start := time.Now()
	const qtpl = `
        SELECT bucket, symbol, open, high, low, close, vol, tick_count, spread
        FROM %s
        WHERE symbol = ? AND tf = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `
	q := fmt.Sprintf(qtpl, s.barTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, tf.String(), from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars query error",
				applogger.String("table", s.barTable),
				applogger.String("symbol", symbol),
				applogger.String("tf", tf.String()),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Timestamp, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.TickCount, &b.Spread); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_bars scan error",
					applogger.String("table", s.barTable),
					applogger.String("symbol", symbol),
					applogger.String("tf", tf.String()),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_bars rows error",
				applogger.String("table", s.barTable),
				applogger.String("symbol", symbol),
				applogger.String("tf", tf.String()),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_bars ok",
			applogger.String("table", s.barTable),
			applogger.String("symbol", symbol),
			applogger.String("tf", tf.String()),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// StoreBars persists engine-produced bars, tagged with their timeframe.
func (s *CHMarketStore) StoreBars(ctx context.Context, tf domrepo.Timeframe, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()
	q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, tf, open, high, low, close, vol, tick_count, spread) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.barTable)
	for i := range bars {
		b := &bars[i]
		if _, err := s.db.ExecContext(ctx, q,
			b.Timestamp, b.Symbol, tf.String(), b.Open, b.High, b.Low, b.Close, b.Volume, b.TickCount, b.Spread,
		); err != nil {
			return fmt.Errorf("store bar: %w", err)
		}
	}
	if s.l != nil {
		s.l.Info("clickhouse store_bars ok",
			applogger.String("table", s.barTable),
			applogger.String("tf", tf.String()),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ domrepo.TickStore = (*CHMarketStore)(nil)
var _ domrepo.BarStore = (*CHMarketStore)(nil)
