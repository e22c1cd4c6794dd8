package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	"TickPull/pkg/queue"
)

// ExportUseCase writes aggregated bars to disk as CSV or JSON. The engine
// stays serialization-agnostic; this is the persistence collaborator.
type ExportUseCase struct {
	bars *BarsUseCase
	dir  string
}

func NewExportUseCase(bars *BarsUseCase, dir string) *ExportUseCase {
	return &ExportUseCase{bars: bars, dir: dir}
}

type ExportParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
	Format    string // "csv" or "json"
}

// barRecord is the flat CSV/JSON row shape for an exported bar.
type barRecord struct {
	Timestamp string  `csv:"timestamp" json:"timestamp"`
	Symbol    string  `csv:"symbol" json:"symbol"`
	Open      float64 `csv:"open" json:"open"`
	High      float64 `csv:"high" json:"high"`
	Low       float64 `csv:"low" json:"low"`
	Close     float64 `csv:"close" json:"close"`
	Volume    float64 `csv:"volume" json:"volume"`
	TickCount int     `csv:"tick_count" json:"tick_count"`
	Spread    float64 `csv:"spread" json:"spread"`
}

func toRecords(bars []models.Bar) []*barRecord {
	out := make([]*barRecord, 0, len(bars))
	for i := range bars {
		b := &bars[i]
		out = append(out, &barRecord{
			Timestamp: b.Timestamp.UTC().Format(time.RFC3339),
			Symbol:    b.Symbol,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			TickCount: b.TickCount,
			Spread:    b.Spread,
		})
	}
	return out
}

// ExportBars aggregates the requested window and writes it under the
// export directory. Returns the written file path.
func (uc *ExportUseCase) ExportBars(ctx context.Context, p ExportParams) (string, error) {
	res, err := uc.bars.GetBars(ctx, GetBarsParams{
		Symbol:    p.Symbol,
		From:      p.From,
		To:        p.To,
		Timeframe: p.Timeframe,
		Limit:     maxBarLimit,
	})
	if err != nil {
		return "", fmt.Errorf("export bars: %w", err)
	}

	if err := os.MkdirAll(uc.dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s_%s.%s",
		p.Symbol,
		p.Timeframe.String(),
		p.From.UTC().Format("20060102T150405"),
		p.To.UTC().Format("20060102T150405"),
		p.Format,
	)
	path := filepath.Join(uc.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch p.Format {
	case "json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(toRecords(res.Bars)); err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
	default:
		if err := gocsv.MarshalFile(toRecords(res.Bars), f); err != nil {
			return "", fmt.Errorf("encode csv: %w", err)
		}
	}
	return path, nil
}

// ExportJobType is the queue message type for background bar exports.
const ExportJobType = "export.bars"

// ExportJobPayload is the queued bulk-export request.
type ExportJobPayload struct {
	Symbol string `json:"symbol"`
	From   string `json:"from"`
	To     string `json:"to"`
	TF     string `json:"tf"`
	Format string `json:"format"`
}

// ExportJob runs queued bulk exports on the redis-backed worker queue.
type ExportJob struct {
	exp *ExportUseCase
}

func NewExportJob(exp *ExportUseCase) *ExportJob { return &ExportJob{exp: exp} }

func (j *ExportJob) Name() string { return "export_bars" }
func (j *ExportJob) Type() string { return ExportJobType }

func (j *ExportJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ExportJobPayload](payload)
	if err != nil {
		return fmt.Errorf("export job payload: %w", err)
	}
	tf, err := domrepo.ParseTimeframe(p.TF)
	if err != nil {
		return err
	}
	from, err := time.Parse(time.RFC3339, p.From)
	if err != nil {
		return fmt.Errorf("export job from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, p.To)
	if err != nil {
		return fmt.Errorf("export job to: %w", err)
	}
	_, err = j.exp.ExportBars(ctx, ExportParams{
		Symbol:    p.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Format:    p.Format,
	})
	return err
}

var _ queue.Job = (*ExportJob)(nil)
