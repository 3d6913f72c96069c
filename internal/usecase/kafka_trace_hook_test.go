package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	pkgkafka "CardPulse/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

type captureMetrics struct {
	nopMetrics
	latencies map[string]float64
	errors    []string
}

func (m *captureMetrics) RecordLatency(op string, seconds float64) { m.latencies[op] = seconds }
func (m *captureMetrics) RecordError(kind string) { m.errors = append(m.errors, kind) }

func TestConsumerTraceHookStampsContext(t *testing.T) {
	m := &captureMetrics{latencies: make(map[string]float64)}
	hook := NewConsumerTraceHook(m)

	msg := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("t-123")}}}
	ctx, _, _, err := hook.BeforeHandle(context.Background(), "cardpulse.observations", msg, []byte("{}"))
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if got, _ := ctx.Value(pkgkafka.CtxTraceID).(string); got != "t-123" {
		t.Fatalf("trace id = %q, want t-123", got)
	}
	if _, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); !ok {
		t.Fatalf("start time missing from context")
	}
}

func TestConsumerTraceHookRecordsLatencyAndErrors(t *testing.T) {
	m := &captureMetrics{latencies: make(map[string]float64)}
	hook := NewConsumerTraceHook(m)

	msg := kafka.Message{}
	ctx, _, _, err := hook.BeforeHandle(context.Background(), "cardpulse.observations", msg, nil)
	if err != nil {
		t.Fatalf("before: %v", err)
	}

	hook.AfterHandle(ctx, "cardpulse.observations", msg, nil, nil)
	if _, ok := m.latencies["consumer_handle_seconds"]; !ok {
		t.Fatalf("latency not recorded: %v", m.latencies)
	}

	hook.OnError(ctx, "cardpulse.observations", msg, nil, fmt.Errorf("store failed"))
	if len(m.errors) != 1 || m.errors[0] != "consumer_handle" {
		t.Fatalf("errors = %v, want [consumer_handle]", m.errors)
	}
}
