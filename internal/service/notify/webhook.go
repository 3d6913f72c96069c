package notify

import (
	"context"
	"sync"
	"time"

	"CardPulse/internal/domain/models"
	pkghttp "CardPulse/pkg/http"
	applogger "CardPulse/pkg/logger"
)

// TrendEvent is the webhook payload sent when a series' trend flips.
type TrendEvent struct {
	SeriesKey string       `json:"series_key"`
	Previous  models.Trend `json:"previous"`
	Current   models.Trend `json:"current"`
	Variation float64      `json:"variation"`
	AsOf      time.Time    `json:"as_of"`
}

// WebhookNotifier posts trend-change events to a configured endpoint, with
// simple bounded retries.
type WebhookNotifier struct {
	client     *pkghttp.Client
	url        string
	maxRetries int
	l          *applogger.Logger

	// last seen trend per series, to detect flips. Observe is called from
	// concurrent recompute workers, so access is guarded.
	mu       sync.Mutex
	previous map[string]models.Trend
}

func NewWebhookNotifier(url string, timeout time.Duration, maxRetries int, l *applogger.Logger) *WebhookNotifier {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &WebhookNotifier{
		client:     pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		url:        url,
		maxRetries: maxRetries,
		l:          l,
		previous:   make(map[string]models.Trend),
	}
}

// Observe compares the series' trend against the last observed one and fires
// a webhook when it changed. First observation primes the state silently.
func (n *WebhookNotifier) Observe(ctx context.Context, s *models.SeriesSummary, asOf time.Time) {
	n.mu.Lock()
	prev, seen := n.previous[s.SeriesKey]
	n.previous[s.SeriesKey] = s.Trend.Trend
	n.mu.Unlock()
	if !seen || prev == s.Trend.Trend {
		return
	}

	ev := TrendEvent{
		SeriesKey: s.SeriesKey,
		Previous:  prev,
		Current:   s.Trend.Trend,
		Variation: s.Trend.Variation,
		AsOf:      asOf,
	}
	if err := n.post(ctx, ev); err != nil {
		if n.l != nil {
			n.l.Error("webhook notify failed",
				applogger.String("series", s.SeriesKey),
				applogger.Error(err),
			)
		}
		return
	}
	if n.l != nil {
		n.l.Info("trend change notified",
			applogger.String("series", s.SeriesKey),
			applogger.String("from", string(prev)),
			applogger.String("to", string(s.Trend.Trend)),
		)
	}
}

func (n *WebhookNotifier) post(ctx context.Context, ev TrendEvent) error {
	var err error
	backoff := 200 * time.Millisecond
	for attempt := 0; attempt < n.maxRetries; attempt++ {
		err = n.client.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: pkghttp.MethodPost,
			URL:    n.url,
			Body:   ev,
		}, nil)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
