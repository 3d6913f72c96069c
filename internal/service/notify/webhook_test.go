package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"CardPulse/internal/domain/models"
)

func summary(key string, trend models.Trend, variation float64) *models.SeriesSummary {
	return &models.SeriesSummary{
		SeriesKey: key,
		Trend:     models.TrendResult{Trend: trend, Variation: variation},
	}
}

func TestWebhookNotifierPostsOnFlipOnly(t *testing.T) {
	var mu sync.Mutex
	var events []TrendEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev TrendEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second, 1, nil)
	ctx := context.Background()
	asOf := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	n.Observe(ctx, summary("scarlet", models.TrendUp, 0.05), asOf)    // primes silently
	n.Observe(ctx, summary("scarlet", models.TrendUp, 0.06), asOf)    // unchanged
	n.Observe(ctx, summary("scarlet", models.TrendDown, -0.04), asOf) // flip

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	ev := events[0]
	if ev.SeriesKey != "scarlet" || ev.Previous != models.TrendUp || ev.Current != models.TrendDown {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Variation != -0.04 {
		t.Fatalf("variation = %v, want -0.04", ev.Variation)
	}
	if !ev.AsOf.Equal(asOf) {
		t.Fatalf("as_of = %v, want %v", ev.AsOf, asOf)
	}
}

func TestWebhookNotifierConcurrentObserve(t *testing.T) {
	var posts int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&posts, 1)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second, 1, nil)
	ctx := context.Background()
	asOf := time.Now().UTC()

	// Two goroutines mirror two recompute queue workers observing the same
	// series set with diverging trends.
	keys := []string{"scarlet", "paldea", "obsidian"}
	trends := []models.Trend{models.TrendUp, models.TrendDown, models.TrendStable}
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				n.Observe(ctx, summary(keys[i%len(keys)], trends[(i+w)%len(trends)], 0.01), asOf)
			}
		}(w)
	}
	wg.Wait()

	if atomic.LoadInt64(&posts) == 0 {
		t.Fatalf("expected at least one trend flip to be posted")
	}
}
