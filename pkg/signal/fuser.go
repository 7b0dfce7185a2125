package signal

import (
	"context"
	"math"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pautalab/newsradar/pkg/cluster"
)

const (
	maxQueryTerms     = 10
	maxTrendKeywords  = 3
	engagementDivisor = 100.0 // likes+reposts per post considered "full" engagement
)

var queryToken = regexp.MustCompile(`[a-zA-Z0-9$\.]{3,}`)

// Fuser collects engagement and trend signals per cluster and fuses them
// into one Signals record. Either backend may be nil; fetch failures and
// timeouts degrade to the neutral zero values.
type Fuser struct {
	engagement EngagementSource
	trends     TrendSource
	lexicon    *Lexicon
	limiter    *rate.Limiter
	workers    int
	timeout    time.Duration
	sampleSize int
	log        zerolog.Logger

	degraded atomic.Int64
}

// Options bound the fan-out and throttle external calls.
type Options struct {
	Workers    int
	RatePerSec float64
	Timeout    time.Duration
	SampleSize int
}

// NewFuser wires the fuser. Nil sources are allowed and mean "no backend
// configured".
func NewFuser(engagement EngagementSource, trends TrendSource, lexicon *Lexicon, opts Options, log zerolog.Logger) *Fuser {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = 120
	}
	return &Fuser{
		engagement: engagement,
		trends:     trends,
		lexicon:    lexicon,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		workers:    opts.Workers,
		timeout:    opts.Timeout,
		sampleSize: opts.SampleSize,
		log:        log,
	}
}

// Degraded reports how many fetches fell back to neutral values since the
// last FuseAll.
func (f *Fuser) Degraded() int { return int(f.degraded.Load()) }

// FuseAll fans out signal collection over a bounded worker pool. The result
// slice is index-aligned with the input clusters.
func (f *Fuser) FuseAll(ctx context.Context, clusters []cluster.Cluster, window time.Duration) ([]Signals, error) {
	f.degraded.Store(0)
	out := make([]Signals, len(clusters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i := range clusters {
		i := i
		g.Go(func() error {
			out[i] = f.Fuse(gctx, clusters[i], window)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// Fuse collects both signals for one cluster. Never returns an error: the
// neutral fallback is the contract.
func (f *Fuser) Fuse(ctx context.Context, c cluster.Cluster, window time.Duration) Signals {
	eng := f.fetchEngagement(ctx, c, window)
	interest, trendVelocity, topics := f.fetchTrends(ctx, c, window)

	eng.ClusterID = c.ID
	eng.TrendsInterest = interest
	eng.TrendsVelocity = trendVelocity
	eng.TrendsTopics = topics

	// Engagement reaction is weighted over search interest: it reflects
	// the more immediate audience response.
	eng.Velocity = clamp(0.7*eng.Velocity+0.3*trendVelocity, 0, 1)
	return eng
}

func (f *Fuser) fetchEngagement(ctx context.Context, c cluster.Cluster, window time.Duration) Signals {
	if f.engagement == nil {
		return Zero(c.ID)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return Zero(c.ID)
	}

	fctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	query := BuildQuery(c)
	posts, err := f.engagement.Search(fctx, query, f.sampleSize)
	if err != nil {
		f.degraded.Add(1)
		f.log.Warn().Str("cluster_id", c.ID).Str("fetch", "engagement").Err(err).
			Msg("signal fetch failed, using neutral values")
		return Zero(c.ID)
	}

	s := Zero(c.ID)
	s.Volume = len(posts)
	if len(posts) == 0 {
		return s
	}

	var interactions int
	now := time.Now().UTC()
	var last2, last6 int
	for _, p := range posts {
		interactions += p.Likes + p.Reposts
		if p.CreatedAt.IsZero() {
			continue
		}
		age := now.Sub(p.CreatedAt)
		if age <= 2*time.Hour {
			last2++
		}
		if age <= 6*time.Hour {
			last6++
		}
	}
	s.EngagementRate = float64(interactions) / (float64(len(posts)) * engagementDivisor)
	if last6 > 0 {
		s.Velocity = clamp(float64(last2)/float64(last6), 0, 1)
	}

	s.SentimentMean, s.SentimentVar = f.lexicon.MeanVariance(posts)

	sample := posts
	if len(sample) > 10 {
		sample = sample[:10]
	}
	s.Sample = sample
	return s
}

func (f *Fuser) fetchTrends(ctx context.Context, c cluster.Cluster, window time.Duration) (interest, velocity float64, topics []string) {
	if f.trends == nil {
		return 0, 0, nil
	}

	keywords := TrendKeywords(c)
	if len(keywords) == 0 {
		return 0, 0, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return 0, 0, keywords
	}

	fctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	series, err := f.trends.InterestOverTime(fctx, keywords, window)
	if err != nil {
		f.degraded.Add(1)
		f.log.Warn().Str("cluster_id", c.ID).Str("fetch", "trends").Err(err).
			Msg("signal fetch failed, using neutral values")
		return 0, 0, keywords
	}

	interest, velocity = SeriesSignals(series)
	return interest, velocity, keywords
}

// SeriesSignals reduces an interest-over-time series (0..100, oldest first)
// to a normalized interest level and a sigmoid-shaped acceleration score
// centered at 0.5 for no change.
func SeriesSignals(series []float64) (interest, velocity float64) {
	if len(series) == 0 {
		return 0, 0
	}

	cut := len(series) * 3 / 4
	if cut < 1 {
		cut = 1
	}
	if cut >= len(series) {
		return 0, 0
	}

	mean := func(vals []float64) float64 {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals)) / 100.0
	}

	recent := mean(series[cut:])
	base := mean(series[:cut])

	gain := (recent - base) / (base + 1e-9)
	velocity = clamp(0.5+math.Tanh(gain)*0.5, 0, 1)
	return clamp(recent, 0, 1), velocity
}

// BuildQuery derives the engagement search query from top headline tokens
// and extracted entities, capped at maxQueryTerms terms.
func BuildQuery(c cluster.Cluster) string {
	var terms []string
	for _, t := range queryToken.FindAllString(c.Headline, -1) {
		if isDigits(t) {
			continue
		}
		terms = append(terms, t)
		if len(terms) == 6 {
			break
		}
	}

	extra := append(append([]string{}, c.Entities.Tickers...), c.Entities.Topics...)
	for _, e := range extra {
		if len(terms) >= maxQueryTerms {
			break
		}
		terms = append(terms, e)
	}
	return strings.Join(terms, " ")
}

// TrendKeywords picks up to three representative keywords: cleaned tickers
// first, then topics, then leading headline tokens as a last resort.
func TrendKeywords(c cluster.Cluster) []string {
	var kws []string
	for _, t := range c.Entities.Tickers {
		t = strings.ToUpper(strings.TrimPrefix(strings.TrimSuffix(t, ".sa"), "$"))
		if len(t) >= 3 {
			kws = append(kws, t)
		}
	}
	for _, tp := range c.Entities.Topics {
		if len(kws) >= maxTrendKeywords {
			break
		}
		kws = append(kws, tp)
	}
	if len(kws) == 0 {
		for _, t := range queryToken.FindAllString(strings.ToLower(c.Headline), -1) {
			if isDigits(t) {
				continue
			}
			kws = append(kws, t)
			if len(kws) == 2 {
				break
			}
		}
	}
	if len(kws) > maxTrendKeywords {
		kws = kws[:maxTrendKeywords]
	}
	return kws
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
