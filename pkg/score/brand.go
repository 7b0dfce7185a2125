package score

import (
	"strings"

	"github.com/pautalab/newsradar/internal/config"
	"github.com/pautalab/newsradar/pkg/cluster"
)

// negativePenalty is the soft multiplier applied when off-brand keywords
// match. A penalty, not an exclusion.
const negativePenalty = 0.7

// BrandMatcher scores editorial fit against an immutable keyword profile.
type BrandMatcher struct {
	categories []brandCategory
	negative   []string
}

type brandCategory struct {
	weight   float64
	keywords []string
}

// NewBrandMatcher compiles a profile, lowercasing all keywords once.
func NewBrandMatcher(profile config.BrandProfile) *BrandMatcher {
	m := &BrandMatcher{}
	for _, cat := range profile.Categories {
		kws := make([]string, len(cat.Keywords))
		for i, kw := range cat.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		m.categories = append(m.categories, brandCategory{weight: cat.Weight, keywords: kws})
	}
	for _, kw := range profile.Negative {
		m.negative = append(m.negative, strings.ToLower(kw))
	}
	return m
}

// Fit returns the brand-fit score in [0,1]: the sum of category weights
// with any keyword match in the text bag, capped at 1.0, softened by
// negativePenalty when an off-brand keyword matches.
func (m *BrandMatcher) Fit(headline string, entities cluster.Entities) float64 {
	bag := textBag(headline, entities)

	var fit float64
	for _, cat := range m.categories {
		for _, kw := range cat.keywords {
			if strings.Contains(bag, kw) {
				fit += cat.weight
				break
			}
		}
	}
	if fit > 1 {
		fit = 1
	}

	for _, neg := range m.negative {
		if strings.Contains(bag, neg) {
			fit *= negativePenalty
			break
		}
	}
	return fit
}

func textBag(headline string, entities cluster.Entities) string {
	parts := []string{headline}
	parts = append(parts, entities.Topics...)
	parts = append(parts, entities.Tickers...)
	return strings.ToLower(strings.Join(parts, " "))
}
