package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CardPulse/internal/domain/models"
	"CardPulse/internal/domain/repository"
	pkgkafka "CardPulse/pkg/kafka"
)

// ClickHouseStorage implements ObservationStore for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.ObservationStore {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, o *models.Observation) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, product_id, price, source_url, event_id) VALUES (?, ?, ?, ?, ?)", s.table)
	// Idempotency key: product plus observation second, deduplicated by the
	// table's ReplacingMergeTree engine.
	eventID := fmt.Sprintf("%s-%d", o.ProductID, o.Date.Unix())
	_, err := s.db.ExecContext(ctx, q,
		o.Date,
		o.ProductID,
		o.Price,
		o.SourceURL,
		eventID,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, o := range obs[start:end] {
			if o == nil || o.ProductID == "" || o.Date.IsZero() {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", o.ProductID, o.Date.Unix())
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args,
				o.Date,
				o.ProductID,
				o.Price,
				o.SourceURL,
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, product_id, price, source_url, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, productID string, from, to time.Time, limit int) ([]*models.Observation, error) {
	q := fmt.Sprintf("SELECT product_id, ts, price, source_url FROM %s WHERE product_id = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, productID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []*models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ProductID, &o.Date, &o.Price, &o.SourceURL); err != nil {
			return nil, err
		}
		obs = append(obs, &o)
	}
	return obs, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, o *models.Observation) error {
	return p.producer.Publish(ctx, p.topic, []byte(o.ProductID), observationPayload(o))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(o.ProductID),
			Value: observationPayload(o),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func observationPayload(o *models.Observation) map[string]interface{} {
	return map[string]interface{}{
		"product_id": o.ProductID,
		"t":          o.Date.Unix(),
		"price":      o.Price,
		"url":        o.SourceURL,
	}
}
