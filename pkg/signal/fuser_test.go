package signal

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pautalab/newsradar/pkg/cluster"
)

type fakeEngagement struct {
	posts []Post
	err   error
}

func (f *fakeEngagement) Name() string { return "fake-engagement" }

func (f *fakeEngagement) Search(ctx context.Context, query string, limit int) ([]Post, error) {
	return f.posts, f.err
}

type fakeTrends struct {
	series []float64
	err    error
}

func (f *fakeTrends) Name() string { return "fake-trends" }

func (f *fakeTrends) InterestOverTime(ctx context.Context, keywords []string, window time.Duration) ([]float64, error) {
	return f.series, f.err
}

func testFuser(e EngagementSource, tr TrendSource) *Fuser {
	lex := NewLexicon([]string{"alta"}, []string{"queda"})
	return NewFuser(e, tr, lex, Options{Workers: 2, RatePerSec: 1000, Timeout: time.Second}, zerolog.Nop())
}

func selicCluster() cluster.Cluster {
	return cluster.Cluster{
		ID:          "c1",
		Headline:    "Copom eleva Selic para 10,5%",
		PublishedAt: time.Now().UTC(),
		URLs:        []string{"https://valor.globo.com/x"},
		Entities:    cluster.Entities{Topics: []string{"selic", "copom"}},
	}
}

func TestFuse_NeutralOnEngagementFailure(t *testing.T) {
	t.Parallel()

	f := testFuser(&fakeEngagement{err: errors.New("backend down")}, nil)
	got := f.Fuse(context.Background(), selicCluster(), 6*time.Hour)

	want := Zero("c1")
	if got.Volume != want.Volume || got.EngagementRate != want.EngagementRate ||
		got.Velocity != want.Velocity || got.SentimentMean != want.SentimentMean {
		t.Fatalf("failed fetch did not degrade to neutral: %+v", got)
	}
	if f.Degraded() != 1 {
		t.Fatalf("degraded count = %d, want 1", f.Degraded())
	}
}

func TestFuse_NilBackends(t *testing.T) {
	t.Parallel()

	f := testFuser(nil, nil)
	got := f.Fuse(context.Background(), selicCluster(), 6*time.Hour)

	if got.ClusterID != "c1" {
		t.Fatalf("cluster id = %q, want c1", got.ClusterID)
	}
	if got.Velocity != 0 || got.Volume != 0 {
		t.Fatalf("nil backends must yield neutral values, got %+v", got)
	}
	if f.Degraded() != 0 {
		t.Fatalf("nil backends are not degradation, count = %d", f.Degraded())
	}
}

func TestFuse_BlendsEngagementAndTrends(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	// All posts within 2h of now so the engagement velocity is 1.0.
	posts := []Post{
		{CreatedAt: now.Add(-10 * time.Minute), Likes: 50, Reposts: 50, Content: "alta"},
		{CreatedAt: now.Add(-30 * time.Minute), Likes: 100, Reposts: 0, Content: "alta"},
	}
	// Flat series keeps the trend velocity at the 0.5 midpoint.
	flat := []float64{40, 40, 40, 40, 40, 40, 40, 40}

	f := testFuser(&fakeEngagement{posts: posts}, &fakeTrends{series: flat})
	got := f.Fuse(context.Background(), selicCluster(), 6*time.Hour)

	if got.Volume != 2 {
		t.Fatalf("volume = %d, want 2", got.Volume)
	}
	if math.Abs(got.EngagementRate-1.0) > 1e-9 {
		t.Fatalf("engagement rate = %v, want 1.0", got.EngagementRate)
	}
	if math.Abs(got.TrendsVelocity-0.5) > 1e-6 {
		t.Fatalf("trend velocity = %v, want 0.5", got.TrendsVelocity)
	}
	if want := 0.7*1.0 + 0.3*0.5; math.Abs(got.Velocity-want) > 1e-6 {
		t.Fatalf("fused velocity = %v, want %v", got.Velocity, want)
	}
	if got.SentimentMean != 1 {
		t.Fatalf("sentiment mean = %v, want 1", got.SentimentMean)
	}
}

func TestFuseAll_IndexAligned(t *testing.T) {
	t.Parallel()

	f := testFuser(nil, nil)
	clusters := []cluster.Cluster{
		{ID: "a", Headline: "um"},
		{ID: "b", Headline: "dois"},
		{ID: "c", Headline: "três"},
	}

	out, err := f.FuseAll(context.Background(), clusters, 6*time.Hour)
	if err != nil {
		t.Fatalf("FuseAll: %v", err)
	}
	if len(out) != len(clusters) {
		t.Fatalf("len = %d, want %d", len(out), len(clusters))
	}
	for i, s := range out {
		if s.ClusterID != clusters[i].ID {
			t.Fatalf("out[%d] = %q, want %q", i, s.ClusterID, clusters[i].ID)
		}
	}
}

func TestSeriesSignals(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		series       []float64
		wantInterest float64
		wantVelocity func(v float64) bool
	}{
		{
			name:         "empty",
			series:       nil,
			wantInterest: 0,
			wantVelocity: func(v float64) bool { return v == 0 },
		},
		{
			name:         "flat",
			series:       []float64{50, 50, 50, 50, 50, 50, 50, 50},
			wantInterest: 0.5,
			wantVelocity: func(v float64) bool { return math.Abs(v-0.5) < 1e-6 },
		},
		{
			name:         "rising",
			series:       []float64{10, 10, 10, 10, 10, 10, 80, 80},
			wantInterest: 0.8,
			wantVelocity: func(v float64) bool { return v > 0.9 },
		},
		{
			name:         "falling",
			series:       []float64{80, 80, 80, 80, 80, 80, 10, 10},
			wantInterest: 0.1,
			wantVelocity: func(v float64) bool { return v < 0.2 },
		},
	}

	for _, tc := range cases {
		interest, velocity := SeriesSignals(tc.series)
		if math.Abs(interest-tc.wantInterest) > 1e-9 {
			t.Fatalf("%s: interest = %v, want %v", tc.name, interest, tc.wantInterest)
		}
		if !tc.wantVelocity(velocity) {
			t.Fatalf("%s: velocity = %v out of expected range", tc.name, velocity)
		}
	}
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	c := cluster.Cluster{
		Headline: "Copom eleva Selic para 10,5% em decisão unânime nesta quarta",
		Entities: cluster.Entities{
			Tickers: []string{"petr4", "vale"},
			Topics:  []string{"selic", "copom", "juros", "ipca", "câmbio", "dólar"},
		},
	}

	q := BuildQuery(c)
	terms := strings.Fields(q)
	if len(terms) > 10 {
		t.Fatalf("query has %d terms, want at most 10: %q", len(terms), q)
	}
	if terms[0] != "Copom" {
		t.Fatalf("first term = %q, want headline token first", terms[0])
	}
	for _, term := range terms {
		if term == "10" || term == "5" {
			t.Fatalf("pure number leaked into query: %q", q)
		}
	}
}

func TestTrendKeywords(t *testing.T) {
	t.Parallel()

	c := cluster.Cluster{
		Headline: "Petrobras dispara após balanço",
		Entities: cluster.Entities{
			Tickers: []string{"petr4"},
			Topics:  []string{"petrobras", "balanço", "dividendos"},
		},
	}

	kws := TrendKeywords(c)
	if len(kws) != 3 {
		t.Fatalf("keywords = %v, want exactly 3", kws)
	}
	if kws[0] != "PETR4" {
		t.Fatalf("first keyword = %q, want cleaned ticker PETR4", kws[0])
	}

	bare := cluster.Cluster{Headline: "mercado reage hoje"}
	kws = TrendKeywords(bare)
	if len(kws) != 2 {
		t.Fatalf("fallback keywords = %v, want 2 headline tokens", kws)
	}
}
