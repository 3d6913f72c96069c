package analytics

import (
	"testing"

	"CardPulse/internal/domain/models"
)

func TestCanonicalSeriesKeyIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	names := []string{
		"Écarlate et Violet - Flammes Obsidiennes",
		"Coffret Pokémon Dracaufeu EV3.5 151",
		"Destinées de Paldea",
		"ETB Pokémon Évoli Célébrations 25 ans",
		"  Tempête   Argentée  ",
	}
	for _, name := range names {
		once := cfg.CanonicalSeriesKey(name)
		twice := cfg.CanonicalSeriesKey(once)
		if once != twice {
			t.Fatalf("canon not idempotent for %q: %q != %q", name, once, twice)
		}
	}
}

func TestCanonicalSeriesKeyFoldsCaseAndAccents(t *testing.T) {
	cfg := DefaultConfig()
	a := cfg.CanonicalSeriesKey("Écarlate et Violet")
	b := cfg.CanonicalSeriesKey("ecarlate ET violet")
	if a != b {
		t.Fatalf("accent/case variants diverge: %q vs %q", a, b)
	}
}

func TestCanonicalSeriesKeyStopWordsAndFusion(t *testing.T) {
	cfg := DefaultConfig()
	a := cfg.CanonicalSeriesKey("Coffret Pokémon Dracaufeu 151")
	b := cfg.CanonicalSeriesKey("EV3.5 151")
	if a != "151" || b != "151" {
		t.Fatalf("alias variants should fuse onto 151: %q, %q", a, b)
	}
}

func TestGroupBySeriesMergesVariants(t *testing.T) {
	cfg := DefaultConfig()
	products := []*models.Product{
		{ID: "1", Name: "EV3.5 151", Type: models.TypeETB},
		{ID: "2", Name: "Coffret Pokémon Dracaufeu 151", Type: models.TypeDisplay},
		{ID: "3", Name: "Destinées de Paldea", Type: models.TypeETB},
	}
	groups := cfg.GroupBySeries(products)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// Groups come back sorted by key.
	if groups[0].Key != "151" || len(groups[0].Products) != 2 {
		t.Fatalf("151 group wrong: %+v", groups[0])
	}
	if groups[1].Key != "destinees de paldea" || len(groups[1].Products) != 1 {
		t.Fatalf("paldea group wrong: %+v", groups[1])
	}
}

func TestGroupBySeriesDeterministicOrder(t *testing.T) {
	cfg := DefaultConfig()
	products := []*models.Product{
		{ID: "1", Name: "Zenith Supreme"},
		{ID: "2", Name: "Astres Radieux"},
	}
	first := cfg.GroupBySeries(products)
	second := cfg.GroupBySeries([]*models.Product{products[1], products[0]})
	if first[0].Key != second[0].Key || first[1].Key != second[1].Key {
		t.Fatalf("group order depends on input order: %v vs %v", first, second)
	}
}
