package analytics

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"CardPulse/internal/domain/models"
)

// CanonicalSeriesKey folds a product display name into a series key:
// lowercase, NFD accent strip, stop-word removal, whitespace collapse, then
// the literal fusion map for known aliases. Purely a function of the input
// string; idempotent.
func (c Config) CanonicalSeriesKey(name string) string {
	s := strings.ToLower(name)
	s = stripMarks(s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !c.isStopWord(f) {
			kept = append(kept, f)
		}
	}
	s = strings.TrimSpace(strings.Join(kept, " "))

	if fused, ok := c.Fusions[s]; ok {
		return fused
	}
	return s
}

// GroupBySeries buckets products by canonical key, irrespective of type.
// Groups are sorted by key so a fixed catalog always yields the same order.
func (c Config) GroupBySeries(products []*models.Product) []*models.SeriesGroup {
	byKey := make(map[string]*models.SeriesGroup)
	for _, p := range products {
		if p == nil {
			continue
		}
		key := c.CanonicalSeriesKey(p.Name)
		g, ok := byKey[key]
		if !ok {
			g = &models.SeriesGroup{Key: key}
			byKey[key] = g
		}
		g.Products = append(g.Products, p)
	}

	out := make([]*models.SeriesGroup, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (c Config) isStopWord(w string) bool {
	for _, sw := range c.StopWords {
		if w == sw {
			return true
		}
	}
	return false
}

// stripMarks decomposes to NFD and drops combining marks, so "écarlate" and
// "ecarlate" fold to the same key.
func stripMarks(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
