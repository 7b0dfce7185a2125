package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pautalab/newsradar/pkg/cluster"
	"github.com/pautalab/newsradar/pkg/feed"
	"github.com/pautalab/newsradar/pkg/score"
	"github.com/pautalab/newsradar/pkg/signal"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, 6*time.Hour)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if runID == 0 {
		t.Fatalf("run id must be nonzero")
	}

	run := &Run{ID: runID, RawItems: 12, Clusters: 4, SkippedItems: 2, DegradedFetches: 1}
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if run.FinishedAt == nil {
		t.Fatalf("FinishRun must set FinishedAt")
	}

	latest, err := s.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest.ID != runID || latest.RawItems != 12 || latest.Clusters != 4 {
		t.Fatalf("latest run = %+v", latest)
	}
	if latest.WindowMinutes != 360 {
		t.Fatalf("window minutes = %d, want 360", latest.WindowMinutes)
	}
}

func TestSaveAndListClusters(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, time.Hour)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clusters := []cluster.Cluster{
		{
			ID:          "aaa",
			Headline:    "Selic sobe",
			PublishedAt: ts,
			URLs:        []string{"https://valor.globo.com/a"},
			Sources:     []string{"valor.globo.com"},
			Titles:      []string{"Selic sobe"},
			Entities:    cluster.Entities{Topics: []string{"selic"}},
		},
		{ID: "bbb", Headline: "Dólar recua", PublishedAt: ts.Add(time.Hour)},
	}
	if err := s.SaveClusters(ctx, runID, clusters); err != nil {
		t.Fatalf("SaveClusters: %v", err)
	}

	// Saving again must upsert, not duplicate.
	clusters[0].Headline = "Selic sobe para 10,5%"
	if err := s.SaveClusters(ctx, runID, clusters); err != nil {
		t.Fatalf("SaveClusters upsert: %v", err)
	}

	rows, err := s.ListClusters(ctx, runID)
	if err != nil {
		t.Fatalf("ListClusters: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d cluster rows, want 2", len(rows))
	}
	// Newest first.
	if rows[0].ID != "bbb" {
		t.Fatalf("first row = %s, want bbb", rows[0].ID)
	}
	if rows[1].Headline != "Selic sobe para 10,5%" {
		t.Fatalf("upsert lost: headline = %q", rows[1].Headline)
	}
	if rows[1].TopicsJSON != `["selic"]` {
		t.Fatalf("topics json = %q", rows[1].TopicsJSON)
	}
}

func TestSaveDecisionAndList(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, time.Hour)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	decisions := []score.Breakdown{
		{ClusterID: "low", Total: 30, Decision: score.DecisionDrop},
		{ClusterID: "high", Total: 80, Decision: score.DecisionPost},
		{ClusterID: "mid", Total: 55, Decision: score.DecisionWatch},
	}
	for _, d := range decisions {
		if err := s.SaveDecision(ctx, runID, d); err != nil {
			t.Fatalf("SaveDecision %s: %v", d.ClusterID, err)
		}
	}

	// Re-save one with a new total; must replace, not duplicate.
	if err := s.SaveDecision(ctx, runID, score.Breakdown{
		ClusterID: "mid", Total: 90, Decision: score.DecisionPost,
	}); err != nil {
		t.Fatalf("SaveDecision upsert: %v", err)
	}

	rows, err := s.ListDecisions(ctx, runID, 10)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d decisions, want 3", len(rows))
	}
	if rows[0].ClusterID != "mid" || rows[0].Total != 90 {
		t.Fatalf("highest total first, got %+v", rows[0])
	}
	if rows[2].ClusterID != "low" {
		t.Fatalf("lowest total last, got %+v", rows[2])
	}

	limited, err := s.ListDecisions(ctx, runID, 1)
	if err != nil {
		t.Fatalf("ListDecisions limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d rows", len(limited))
	}
}

func TestInsertItemsAndSignals(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, time.Hour)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	items := []feed.Item{
		{Title: "t1", URL: "https://a.com/1", Source: "a.com", PublishedAt: time.Now().UTC()},
		{Title: "t2", URL: "https://a.com/2", Source: "a.com", PublishedAt: time.Now().UTC()},
	}
	if err := s.InsertItems(ctx, runID, items); err != nil {
		t.Fatalf("InsertItems: %v", err)
	}

	sigs := []signal.Signals{
		{ClusterID: "aaa", Volume: 5, Velocity: 0.4, TrendsTopics: []string{"selic"}},
	}
	if err := s.SaveSignals(ctx, runID, sigs); err != nil {
		t.Fatalf("SaveSignals: %v", err)
	}
	sigs[0].Volume = 9
	if err := s.SaveSignals(ctx, runID, sigs); err != nil {
		t.Fatalf("SaveSignals upsert: %v", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM signals WHERE run_id = ?", runID); err != nil {
		t.Fatalf("count signals: %v", err)
	}
	if count != 1 {
		t.Fatalf("signals upsert duplicated rows: %d", count)
	}
}
