// Package score computes the composite relevance score and the
// POST/WATCH/DROP decision for deduplicated story clusters.
package score

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pautalab/newsradar/internal/config"
	"github.com/pautalab/newsradar/pkg/cluster"
	"github.com/pautalab/newsradar/pkg/normalize"
	"github.com/pautalab/newsradar/pkg/signal"
)

// Decision is the editorial tier derived from the composite score.
type Decision string

const (
	DecisionPost  Decision = "POST"
	DecisionWatch Decision = "WATCH"
	DecisionDrop  Decision = "DROP"
)

// noiseDampening scales how hard a full noise penalty hits the total
// (up to -40%).
const noiseDampening = 0.4

// Breakdown is the per-cluster score record. Recomputed every run.
type Breakdown struct {
	ClusterID      string   `json:"cluster_id"`
	Freshness      float64  `json:"freshness"`
	Authority      float64  `json:"authority"`
	SocialVelocity float64  `json:"social_velocity"`
	Engagement     float64  `json:"engagement"`
	Sentiment      float64  `json:"sentiment"`
	BrandFit       float64  `json:"brand_fit"`
	Novelty        float64  `json:"novelty"`
	RiskPenalty    float64  `json:"risk_penalty"`
	NoisePenalty   float64  `json:"noise_penalty"`
	Total          float64  `json:"total"`
	Decision       Decision `json:"decision"`
}

// Scorer computes score breakdowns from immutable configuration. All
// keyword tables are injected at construction; nothing global.
type Scorer struct {
	weights     config.Weights
	tau         float64
	riskPenalty float64
	postCutoff  float64
	watchCutoff float64
	noBrandFit  bool

	brand       *BrandMatcher
	noise       *NoiseScorer
	authority   map[string]float64
	authDomains []string // sorted, fixes the lookup order
	authFloor   float64

	now func() time.Time
}

// NewScorer builds a scorer from validated configuration.
func NewScorer(cfg config.ScoringConfig, brand config.BrandProfile, noise config.NoiseLists) *Scorer {
	floor := cfg.AuthorityFloor
	if floor == 0 {
		floor = 0.6
	}
	domains := make([]string, 0, len(cfg.Authority))
	for domain := range cfg.Authority {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	return &Scorer{
		weights:     cfg.Weights,
		tau:         cfg.TauHours,
		riskPenalty: cfg.RiskPenalty,
		postCutoff:  cfg.PostCutoff,
		watchCutoff: cfg.WatchCutoff,
		noBrandFit:  cfg.NoBrandFit,
		brand:       NewBrandMatcher(brand),
		noise:       NewNoiseScorer(noise),
		authority:   cfg.Authority,
		authDomains: domains,
		authFloor:   floor,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Score computes the breakdown for one cluster against a read-only novelty
// snapshot. No error conditions: missing signals arrive as neutral zeros.
func (s *Scorer) Score(c cluster.Cluster, signals signal.Signals, memory *Tracker) Breakdown {
	firstURL := ""
	if len(c.URLs) > 0 {
		firstURL = c.URLs[0]
	}
	host := normalize.DomainFromURL(firstURL)

	freshness := s.Freshness(c.PublishedAt)
	authority := s.Authority(host)
	socialVelocity := clamp01(signals.Velocity)
	engagement := clampRange(signals.EngagementRate, 0, 0.5)
	// Extreme sentiment in either direction reads as outrage or hype,
	// both low-quality for this use case.
	sentiment := 1 - math.Abs(signals.SentimentMean)

	var brandFit float64
	if s.noBrandFit {
		// General mode: entity presence stands in for profile fit.
		if len(c.Entities.Topics) > 0 || len(c.Entities.Tickers) > 0 {
			brandFit = 0.8
		} else {
			brandFit = 0.3
		}
	} else {
		brandFit = s.brand.Fit(c.Headline, c.Entities)
	}

	novelty := memory.Novelty(cluster.HeadlineTokens(c.Headline))
	noisePen := s.noise.Penalty(c.Headline, host, firstURL)

	w := s.weights
	total := 100 * (w.Freshness*freshness +
		w.Authority*authority +
		w.SocialVelocity*socialVelocity +
		w.Engagement*engagement +
		w.BrandFit*brandFit +
		w.Novelty*novelty +
		w.Sentiment*sentiment)
	total *= s.riskPenalty
	total *= 1 - noiseDampening*noisePen

	return Breakdown{
		ClusterID:      c.ID,
		Freshness:      freshness,
		Authority:      authority,
		SocialVelocity: socialVelocity,
		Engagement:     engagement,
		Sentiment:      sentiment,
		BrandFit:       brandFit,
		Novelty:        novelty,
		RiskPenalty:    s.riskPenalty,
		NoisePenalty:   noisePen,
		Total:          total,
		Decision:       s.Classify(total),
	}
}

// Freshness decays exponentially with hours since publication so very
// recent items dominate without a hard cliff.
func (s *Scorer) Freshness(publishedAt time.Time) float64 {
	hours := s.now().Sub(publishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-hours / s.tau)
}

// Authority looks up the host in the domain-weight table; unknown domains
// get the conservative floor. Domains are scanned in sorted order so a host
// matching several entries always resolves to the same weight.
func (s *Scorer) Authority(host string) float64 {
	for _, domain := range s.authDomains {
		if strings.Contains(host, domain) {
			return s.authority[domain]
		}
	}
	return s.authFloor
}

// Classify thresholds a total into a tier. Ties go to the higher tier, and
// for fixed cutoffs a higher total never yields a lower tier.
func (s *Scorer) Classify(total float64) Decision {
	switch {
	case total >= s.postCutoff:
		return DecisionPost
	case total >= s.watchCutoff:
		return DecisionWatch
	default:
		return DecisionDrop
	}
}

func clamp01(x float64) float64 { return clampRange(x, 0, 1) }

func clampRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
