// Package metrics exposes the pipeline's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder tracks pipeline throughput, errors, latest prices and
// operation latency.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

func New() *Recorder {
	messagesSent := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickpull_messages_sent_total",
		Help: "Total number of messages sent to backend",
	}, []string{"backend", "symbol"})

	errorsTotal := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickpull_errors_total",
		Help: "Total number of errors encountered",
	}, []string{"type"})

	lastPrice := promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tickpull_last_price",
		Help: "Last recorded price for a symbol",
	}, []string{"symbol"})

	latency := promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tickpull_operation_duration_seconds",
		Help:    "Duration of operations in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	return &Recorder{
		messagesSent: messagesSent,
		errorsTotal:  errorsTotal,
		lastPrice:    lastPrice,
		latency:      latency,
	}
}

func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency observes an operation duration in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
