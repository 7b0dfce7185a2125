package score

import (
	"testing"

	"github.com/pautalab/newsradar/internal/config"
	"github.com/pautalab/newsradar/pkg/cluster"
)

func testMatcher() *BrandMatcher {
	return NewBrandMatcher(config.Default().Brand)
}

func TestFit_SingleCategory(t *testing.T) {
	t.Parallel()

	got := testMatcher().Fit("Copom eleva a Selic para 10,5%", cluster.Entities{})
	if got != 0.65 {
		t.Fatalf("market-only fit = %v, want 0.65", got)
	}
}

func TestFit_CappedAtOne(t *testing.T) {
	t.Parallel()

	// Matches planejamento_patrimonial (1.0) and sucessao_legado (0.9).
	got := testMatcher().Fit("Holding familiar e family office no planejamento sucessório", cluster.Entities{})
	if got != 1.0 {
		t.Fatalf("multi-category fit = %v, want cap at 1.0", got)
	}
}

func TestFit_NegativeKeywordSoftens(t *testing.T) {
	t.Parallel()

	m := testMatcher()
	clean := m.Fit("Sucessão e herança em pauta", cluster.Entities{})
	tainted := m.Fit("Sucessão e herança de celebridade", cluster.Entities{})

	if clean != 1.0 {
		t.Fatalf("clean fit = %v, want 1.0", clean)
	}
	if tainted != 0.7 {
		t.Fatalf("tainted fit = %v, want 0.7", tainted)
	}
}

func TestFit_EntitiesCountTowardMatch(t *testing.T) {
	t.Parallel()

	got := testMatcher().Fit("Mercado reage a decisão", cluster.Entities{Topics: []string{"selic"}})
	if got != 0.65 {
		t.Fatalf("entity-driven fit = %v, want 0.65", got)
	}
}

func TestFit_NoMatch(t *testing.T) {
	t.Parallel()

	if got := testMatcher().Fit("Time vence clássico regional", cluster.Entities{}); got != 0 {
		t.Fatalf("unrelated fit = %v, want 0", got)
	}
}
