package score

import (
	"net/url"
	"sort"
	"strings"

	"github.com/pautalab/newsradar/internal/config"
)

// Fixed increments per matched noise class. Capped at 1.0 overall.
const (
	crimeIncrement    = 0.6
	accidentIncrement = 0.4
	tabloidIncrement  = 0.3
	localIncrement    = 0.4
	sectionIncrement  = 0.3
)

// NoiseScorer accumulates a 0..1 penalty for crime/accident/tabloid
// headlines and low-signal URL sections of known domains.
type NoiseScorer struct {
	crime      []string
	accident   []string
	tabloid    []string
	localHints []string
	sections   []domainSections
}

// domainSections pairs a domain with its low-signal URL path prefixes.
// Kept as a sorted slice so lookups scan domains in a fixed order.
type domainSections struct {
	domain   string
	prefixes []string
}

// NewNoiseScorer compiles the configured noise lists.
func NewNoiseScorer(lists config.NoiseLists) *NoiseScorer {
	lower := func(words []string) []string {
		out := make([]string, len(words))
		for i, w := range words {
			out[i] = strings.ToLower(w)
		}
		return out
	}
	sections := make([]domainSections, 0, len(lists.LowSections))
	for domain, prefixes := range lists.LowSections {
		sections = append(sections, domainSections{domain: domain, prefixes: prefixes})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].domain < sections[j].domain })

	return &NoiseScorer{
		crime:      lower(lists.Crime),
		accident:   lower(lists.Accident),
		tabloid:    lower(lists.Tabloid),
		localHints: lower(lists.LocalHints),
		sections:   sections,
	}
}

// Penalty returns the noise penalty in [0,1] for a headline and its first
// member URL.
func (n *NoiseScorer) Penalty(headline, host, rawURL string) float64 {
	lower := strings.ToLower(headline)

	var pen float64
	if anyIn(lower, n.crime) {
		pen += crimeIncrement
	}
	if anyIn(lower, n.accident) {
		pen += accidentIncrement
	}
	if anyIn(lower, n.tabloid) {
		pen += tabloidIncrement
	}
	if anyIn(lower, n.localHints) {
		pen += localIncrement
	}

	// A domain that matches the host but none of its prefixes does not end
	// the scan; the host may match a later domain whose prefix does.
	path := urlPath(rawURL)
	for _, ds := range n.sections {
		if !strings.Contains(host, ds.domain) {
			continue
		}
		matched := false
		for _, sec := range ds.prefixes {
			if strings.HasPrefix(path, sec) {
				pen += sectionIncrement
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}

	if pen > 1 {
		pen = 1
	}
	return pen
}

func anyIn(text string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "/"
	}
	return strings.ToLower(u.Path)
}
