package signal

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// StubEngagement is the offline engagement double. Output is a pure
// function of the query so repeated runs stay reproducible.
type StubEngagement struct{}

func (StubEngagement) Name() string { return "engagement-stub" }

func (StubEngagement) Search(_ context.Context, query string, limit int) ([]Post, error) {
	h := fnv.New64a()
	h.Write([]byte(query))
	seed := h.Sum64()

	n := int(seed % 40)
	if limit > 0 && n > limit {
		n = limit
	}

	now := time.Now().UTC()
	posts := make([]Post, n)
	for i := range posts {
		// Spread posts over the last six hours, denser near now for
		// low seeds so velocity varies across queries.
		age := time.Duration(int64(i)*int64(seed%7+1)) * 10 * time.Minute
		posts[i] = Post{
			CreatedAt: now.Add(-age),
			User:      fmt.Sprintf("user%d", (seed+uint64(i))%1000),
			Likes:     int((seed >> uint(i%16)) % 50),
			Reposts:   int((seed >> uint(i%8)) % 20),
			Content:   query,
		}
	}
	return posts, nil
}

// StubTrends is the offline trends double: a mild upward series derived
// from the keyword hash.
type StubTrends struct{}

func (StubTrends) Name() string { return "trends-stub" }

func (StubTrends) InterestOverTime(_ context.Context, keywords []string, _ time.Duration) ([]float64, error) {
	h := fnv.New64a()
	for _, kw := range keywords {
		h.Write([]byte(kw))
	}
	seed := h.Sum64()

	series := make([]float64, 16)
	base := float64(seed % 50)
	slope := float64(seed%5) / 4
	for i := range series {
		series[i] = base + slope*float64(i)
		if series[i] > 100 {
			series[i] = 100
		}
	}
	return series, nil
}
