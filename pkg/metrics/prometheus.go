package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	observations *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	indexLevel   prometheus.Gauge
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardpulse_observations_total",
				Help: "Total number of observations routed to a backend",
			},
			[]string{"backend", "product_id"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cardpulse_last_price",
				Help: "Last observed price for a product",
			},
			[]string{"product_id"},
		),
		indexLevel: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cardpulse_market_index_level",
				Help: "Current level of the global market index",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordObservation records an observation routed to a backend.
func (r *Recorder) RecordObservation(backend, productID string) {
	r.observations.WithLabelValues(backend, productID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last observed price for a product.
func (r *Recorder) RecordLastPrice(productID string, price float64) {
	r.lastPrice.WithLabelValues(productID).Set(price)
}

// RecordIndexLevel records the current global index level.
func (r *Recorder) RecordIndexLevel(value float64) {
	r.indexLevel.Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
