package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CSV writes clusters.csv, social_signals.csv and decisions.csv into a
// directory. Intermediate values are rounded to 4 decimal places, totals
// to 2; decisions are sorted descending by total.
type CSV struct {
	dir string
}

// NewCSV creates a CSV emitter writing into dir.
func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

func (c *CSV) Name() string { return "csv" }

func (c *CSV) Emit(_ context.Context, b *Batch) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", c.dir, err)
	}
	if err := c.writeClusters(b); err != nil {
		return err
	}
	if err := c.writeSignals(b); err != nil {
		return err
	}
	return c.writeDecisions(b)
}

func (c *CSV) writeClusters(b *Batch) error {
	rows := [][]string{{
		"cluster_id", "headline", "published_at", "urls", "sources", "tickers", "topics",
	}}
	for _, cl := range b.Clusters {
		rows = append(rows, []string{
			cl.ID,
			cl.Headline,
			cl.PublishedAt.UTC().Format(time.RFC3339),
			strings.Join(cl.URLs, " | "),
			strings.Join(cl.Sources, " | "),
			strings.Join(cl.Entities.Tickers, " "),
			strings.Join(cl.Entities.Topics, " "),
		})
	}
	return c.writeFile("clusters.csv", rows)
}

func (c *CSV) writeSignals(b *Batch) error {
	rows := [][]string{{
		"cluster_id", "volume", "engagement_rate", "velocity", "sentiment_mean",
		"sentiment_var", "trends_interest", "trends_velocity", "trends_topics", "sample_users",
	}}
	for _, s := range b.Signals {
		users := make([]string, 0, len(s.Sample))
		seen := make(map[string]bool)
		for _, p := range s.Sample {
			if p.User != "" && !seen[p.User] {
				seen[p.User] = true
				users = append(users, p.User)
			}
		}
		rows = append(rows, []string{
			s.ClusterID,
			strconv.Itoa(s.Volume),
			round4(s.EngagementRate),
			round4(s.Velocity),
			round4(s.SentimentMean),
			round4(s.SentimentVar),
			round4(s.TrendsInterest),
			round4(s.TrendsVelocity),
			strings.Join(s.TrendsTopics, " | "),
			strings.Join(users, " | "),
		})
	}
	return c.writeFile("social_signals.csv", rows)
}

func (c *CSV) writeDecisions(b *Batch) error {
	sorted := make([]int, len(b.Decisions))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return b.Decisions[sorted[i]].Total > b.Decisions[sorted[j]].Total
	})

	rows := [][]string{{
		"cluster_id", "freshness", "authority", "social_velocity", "engagement",
		"sentiment", "brand_fit", "novelty", "risk_penalty", "total", "decision",
	}}
	for _, idx := range sorted {
		d := b.Decisions[idx]
		rows = append(rows, []string{
			d.ClusterID,
			round4(d.Freshness),
			round4(d.Authority),
			round4(d.SocialVelocity),
			round4(d.Engagement),
			round4(d.Sentiment),
			round4(d.BrandFit),
			round4(d.Novelty),
			round4(d.RiskPenalty),
			round2(d.Total),
			string(d.Decision),
		})
	}
	return c.writeFile("decisions.csv", rows)
}

func (c *CSV) writeFile(name string, rows [][]string) error {
	path := filepath.Join(c.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func round4(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
func round2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
