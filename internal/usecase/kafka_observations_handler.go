package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CardPulse/internal/domain/models"
	domrepo "CardPulse/internal/domain/repository"
	pkgkafka "CardPulse/pkg/kafka"
)

// KafkaObservationsHandler consumes observation messages and writes them to
// storage.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.ObservationStore
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.ObservationStore, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {product_id, t, price, url}
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ProductID string  `json:"product_id"`
		T         int64   `json:"t"`
		Price     float64 `json:"price"`
		URL       string  `json:"url"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.ProductID == "" || m.Price <= 0 {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("invalid observation message")
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Observation{
		ProductID: m.ProductID,
		Date:      time.Unix(m.T, 0).UTC(),
		Price:     m.Price,
		SourceURL: m.URL,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservation("clickhouse", m.ProductID)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
