// Package signal fetches and fuses external engagement and search-interest
// signals for scored clusters. Every fetch is optional: failure degrades to
// the documented neutral zero record, never to a batch error.
package signal

import (
	"context"
	"time"
)

// Post is one sampled engagement record.
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	User      string    `json:"user"`
	Likes     int       `json:"likes"`
	Reposts   int       `json:"reposts"`
	Content   string    `json:"content"`
}

// Signals is the fused one-to-one signal record for a cluster.
type Signals struct {
	ClusterID      string   `json:"cluster_id"`
	Volume         int      `json:"volume"`
	EngagementRate float64  `json:"engagement_rate"`
	Velocity       float64  `json:"velocity"` // fused engagement + trends velocity, [0,1]
	SentimentMean  float64  `json:"sentiment_mean"`  // [-1,1]
	SentimentVar   float64  `json:"sentiment_var"`   // >= 0
	TrendsInterest float64  `json:"trends_interest"` // [0,1]
	TrendsVelocity float64  `json:"trends_velocity"` // [0,1]
	Sample         []Post   `json:"sample"`
	TrendsTopics   []string `json:"trends_topics"`
}

// Zero returns the neutral record for a cluster. Used whenever a backend is
// absent or a fetch fails.
func Zero(clusterID string) Signals {
	return Signals{ClusterID: clusterID}
}

// EngagementSource searches an external engagement backend for recent posts
// matching a query.
type EngagementSource interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Post, error)
}

// TrendSource returns an interest-over-time series for up to three
// keywords, values normalized to [0,100].
type TrendSource interface {
	Name() string
	InterestOverTime(ctx context.Context, keywords []string, window time.Duration) ([]float64, error)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
