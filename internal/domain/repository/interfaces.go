package repository

import (
	"context"
	"time"

	"CardPulse/internal/domain/models"
)

// ObservationStream is a live feed of already-filtered price observations
// pushed by the acquisition service.
type ObservationStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Observation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher sends observations to the message bus.
type Publisher interface {
	Publish(ctx context.Context, o *models.Observation) error
	PublishBatch(ctx context.Context, obs []*models.Observation) error
	Close() error
}

// ObservationStore persists raw observations.
type ObservationStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, o *models.Observation) error
	StoreBatch(ctx context.Context, obs []*models.Observation) error
	Query(ctx context.Context, productID string, from, to time.Time, limit int) ([]*models.Observation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordObservation(backend, productID string)
	RecordError(kind string)
	RecordLastPrice(productID string, price float64)
	RecordIndexLevel(value float64)
	RecordLatency(op string, seconds float64)
}
