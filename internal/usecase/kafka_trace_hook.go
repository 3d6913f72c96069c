package usecase

import (
	"context"
	"time"

	domrepo "CardPulse/internal/domain/repository"
	pkgkafka "CardPulse/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

// NewConsumerTraceHook builds a consumer hook that stamps the handling start
// time and the trace id carried in message headers into the context, then
// records handling latency and failures on the way out.
func NewConsumerTraceHook(metrics domrepo.Metrics) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		Before: func(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return ctx, km, data, nil
		},
		After: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
			if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
				metrics.RecordLatency("consumer_handle_seconds", time.Since(start).Seconds())
			}
		},
		Err: func(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
			metrics.RecordError("consumer_handle")
		},
	}
}
