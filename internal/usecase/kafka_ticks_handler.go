package usecase

import (
	"context"
	"encoding/json"
	"time"

	"TickPull/internal/domain/models"
	domrepo "TickPull/internal/domain/repository"
	pkgkafka "TickPull/pkg/kafka"
)

// KafkaTicksHandler consumes tick messages from Kafka and writes them to
// storage.
type KafkaTicksHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, b, a, bv, av}; t in epoch ms
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		B      float64 `json:"b"`
		A      float64 `json:"a"`
		BV     float64 `json:"bv"`
		AV     float64 `json:"av"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T < 1e11 { // seconds, normalize to ms
		m.T = m.T * 1000
	}
	ts := time.UnixMilli(m.T).UTC()
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Tick{
		Symbol:    m.Symbol,
		Timestamp: ts,
		Bid:       m.B,
		Ask:       m.A,
		BidVolume: m.BV,
		AskVolume: m.AV,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
