package cluster

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// B3-style codes (PETR4.SA) and cashtags ($VALE).
	tickerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z]{4}\d)\.SA\b`),
		regexp.MustCompile(`\$([A-Z]{1,5})\b`),
	}
	capsPattern = regexp.MustCompile(`\b[A-Z]{2,6}\b`)
)

// Entities are tickers, topics and capitalized terms pulled from cluster
// text. Capitalized terms are a weak supplementary signal only.
type Entities struct {
	Tickers []string `json:"tickers"`
	Topics  []string `json:"topics"`
	Caps    []string `json:"caps"`
}

// Extractor matches a closed topic vocabulary plus ticker patterns.
type Extractor struct {
	topics []string
}

// NewExtractor builds an extractor over the configured topic vocabulary.
func NewExtractor(topics []string) *Extractor {
	lowered := make([]string, len(topics))
	for i, t := range topics {
		lowered[i] = strings.ToLower(t)
	}
	return &Extractor{topics: lowered}
}

// Extract pulls entities from text. No matches means empty sets, never an
// error.
func (e *Extractor) Extract(text string) Entities {
	lower := strings.ToLower(text)

	tickers := make(map[string]bool)
	for _, pat := range tickerPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			tickers[strings.ToLower(m[1])] = true
		}
	}

	topics := make(map[string]bool)
	for _, t := range e.topics {
		if strings.Contains(lower, t) {
			topics[t] = true
		}
	}

	caps := make(map[string]bool)
	for _, m := range capsPattern.FindAllString(text, -1) {
		caps[m] = true
	}

	return Entities{
		Tickers: sortedKeys(tickers),
		Topics:  sortedKeys(topics),
		Caps:    sortedKeys(caps),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
