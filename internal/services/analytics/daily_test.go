package analytics

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"CardPulse/internal/domain/models"
)

func TestAggregateDailyMedianOdd(t *testing.T) {
	points := []models.PricePoint{
		pricePoint(0, 3), pricePoint(0, 1), pricePoint(0, 2),
	}
	got := AggregateDaily(points)
	if len(got) != 1 {
		t.Fatalf("expected 1 day, got %d", len(got))
	}
	if got[0].Price != 2 {
		t.Fatalf("median of [3,1,2] = %v, want 2", got[0].Price)
	}
}

func TestAggregateDailyMedianEven(t *testing.T) {
	points := []models.PricePoint{
		pricePoint(0, 3), pricePoint(0, 1), pricePoint(0, 2), pricePoint(0, 4),
	}
	got := AggregateDaily(points)
	if got[0].Price != 2.5 {
		t.Fatalf("median of [3,1,2,4] = %v, want 2.5", got[0].Price)
	}
}

func TestAggregateDailySinglePoint(t *testing.T) {
	got := AggregateDaily([]models.PricePoint{pricePoint(0, 42)})
	if len(got) != 1 || got[0].Price != 42 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestAggregateDailyOrderIndependent(t *testing.T) {
	base := []models.PricePoint{
		pricePoint(0, 10), pricePoint(0, 12), pricePoint(1, 11),
		pricePoint(2, 9), pricePoint(2, 13), pricePoint(2, 8),
	}
	want := AggregateDaily(base)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.PricePoint, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := AggregateDaily(shuffled)
		if len(got) != len(want) {
			t.Fatalf("shuffle %d: length %d != %d", i, len(got), len(want))
		}
		for j := range got {
			if !got[j].Day.Equal(want[j].Day) || got[j].Price != want[j].Price {
				t.Fatalf("shuffle %d: point %d differs: %+v vs %+v", i, j, got[j], want[j])
			}
		}
	}
}

func TestAggregateDailyMixedZonesNormalizedDay(t *testing.T) {
	cet := time.FixedZone("CET", 2*3600)
	a := models.PricePoint{Date: time.Date(2025, 3, 1, 23, 30, 0, 0, cet), Price: 10}
	b := models.PricePoint{Date: time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC), Price: 12}

	first := AggregateDaily([]models.PricePoint{a, b})
	second := AggregateDaily([]models.PricePoint{b, a})
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one day, got %d and %d", len(first), len(second))
	}

	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, got := range []models.DailyPoint{first[0], second[0]} {
		if !got.Day.Equal(want) || got.Day.Location() != time.UTC {
			t.Fatalf("day = %v in %v, want midnight UTC", got.Day, got.Day.Location())
		}
	}
	if first[0].Price != second[0].Price {
		t.Fatalf("input order changed the median: %v vs %v", first[0].Price, second[0].Price)
	}
}

func TestAggregateDailyDropsInvalid(t *testing.T) {
	points := []models.PricePoint{
		{Date: day(0), Price: math.NaN()},
		{Date: day(0), Price: math.Inf(1)},
		{Date: day(0), Price: -5},
		{Date: time.Time{}, Price: 10},
	}
	if got := AggregateDaily(points); got != nil {
		t.Fatalf("expected empty series, got %+v", got)
	}

	mixed := append(points, pricePoint(0, 10))
	got := AggregateDaily(mixed)
	if len(got) != 1 || got[0].Price != 10 {
		t.Fatalf("expected the single valid point, got %+v", got)
	}
}

func TestAggregateDailySortedAscending(t *testing.T) {
	points := []models.PricePoint{
		pricePoint(5, 1), pricePoint(1, 2), pricePoint(3, 3),
	}
	got := AggregateDaily(points)
	for i := 1; i < len(got); i++ {
		if !got[i-1].Day.Before(got[i].Day) {
			t.Fatalf("series not strictly ascending at %d: %+v", i, got)
		}
	}
}

func TestAggregateDailyEmpty(t *testing.T) {
	if got := AggregateDaily(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}
