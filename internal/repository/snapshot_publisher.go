package repository

import (
	"context"
	"time"

	"CardPulse/internal/domain/models"
	pkgkafka "CardPulse/pkg/kafka"
)

// KafkaSnapshotPublisher broadcasts recomputed overviews on the snapshots
// topic for downstream consumers (dashboards, alerting).
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) PublishSnapshot(ctx context.Context, overview *models.MarketOverview) error {
	if overview == nil || overview.Index == nil {
		return nil
	}
	payload := map[string]interface{}{
		"as_of":        overview.AsOf,
		"published_at": time.Now().UTC(),
		"current":      overview.Index.Current,
		"change_7d":    overview.Index.Change7d,
		"change_30d":   overview.Index.Change30d,
		"change_90d":   overview.Index.Change90d,
		"change_ytd":   overview.Index.ChangeYTD,
		"series_count": len(overview.Series),
	}
	return p.producer.Publish(ctx, p.topic, []byte("market-index"), payload)
}
