package usecase

import (
	"context"
	"fmt"
	"time"

	"CardPulse/internal/domain/models"
	domrepo "CardPulse/internal/domain/repository"
	pkgcache "CardPulse/pkg/cache"
	applogger "CardPulse/pkg/logger"
	"CardPulse/pkg/queue"
)

const recomputeMsgType = "market_recompute"

const debounceLockKey = "cardpulse:recompute:debounce"

// RecomputePayload is the queue message behind a recompute request.
type RecomputePayload struct {
	ProductID string    `json:"product_id"`
	Requested time.Time `json:"requested"`
}

// RecomputeScheduler debounces recompute requests through a Redis lock and
// enqueues at most one job per debounce window.
type RecomputeScheduler struct {
	queue    queue.QueueService
	cache    pkgcache.Service
	debounce time.Duration
}

func NewRecomputeScheduler(q queue.QueueService, cache pkgcache.Service, debounce time.Duration) *RecomputeScheduler {
	return &RecomputeScheduler{queue: q, cache: cache, debounce: debounce}
}

func (s *RecomputeScheduler) ScheduleRecompute(ctx context.Context, productID string) error {
	if s.cache != nil && s.debounce > 0 {
		ok, err := s.cache.TryLock(ctx, debounceLockKey, s.debounce)
		if err == nil && !ok {
			// a recompute is already pending for this window
			return nil
		}
	}
	return s.queue.PublishMessage(ctx, recomputeMsgType, RecomputePayload{
		ProductID: productID,
		Requested: time.Now().UTC(),
	})
}

var _ Recomputer = (*RecomputeScheduler)(nil)

// SnapshotPublisher persists or broadcasts a freshly computed overview.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, overview *models.MarketOverview) error
}

// TrendObserver is notified with every series summary after a recompute.
type TrendObserver interface {
	Observe(ctx context.Context, s *models.SeriesSummary, asOf time.Time)
}

// RecomputeJob is the queue worker behind recompute messages: it drops the
// cached analysis, recomputes the overview, broadcasts the snapshot, and
// lets the trend observer fire notifications.
type RecomputeJob struct {
	analysis  *MarketAnalysisUseCase
	snapshots SnapshotPublisher // optional
	observer  TrendObserver     // optional
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewRecomputeJob(analysis *MarketAnalysisUseCase, snapshots SnapshotPublisher, observer TrendObserver, metrics domrepo.Metrics, l *applogger.Logger) *RecomputeJob {
	return &RecomputeJob{
		analysis:  analysis,
		snapshots: snapshots,
		observer:  observer,
		metrics:   metrics,
		l:         l,
	}
}

func (j *RecomputeJob) Name() string { return "market-recompute" }
func (j *RecomputeJob) Type() string { return recomputeMsgType }

func (j *RecomputeJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RecomputePayload](payload)
	if err != nil {
		return fmt.Errorf("recompute payload: %w", err)
	}

	start := time.Now()
	j.analysis.Invalidate(ctx)

	overview, err := j.analysis.Overview(ctx, domrepo.WinMax)
	if err != nil {
		j.metrics.RecordError("recompute")
		return fmt.Errorf("recompute overview: %w", err)
	}

	if j.snapshots != nil {
		if err := j.snapshots.PublishSnapshot(ctx, overview); err != nil {
			j.metrics.RecordError("snapshot_publish")
			if j.l != nil {
				j.l.Error("snapshot publish failed", applogger.Error(err))
			}
		}
	}
	if j.observer != nil {
		for _, s := range overview.Series {
			j.observer.Observe(ctx, s, overview.AsOf)
		}
	}

	j.metrics.RecordLatency("recompute", time.Since(start).Seconds())
	if j.l != nil {
		j.l.Info("market recompute done",
			applogger.String("trigger_product", p.ProductID),
			applogger.Int("series", len(overview.Series)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ queue.Job = (*RecomputeJob)(nil)
