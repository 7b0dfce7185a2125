package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pautalab/newsradar/pkg/cluster"
	"github.com/pautalab/newsradar/pkg/feed"
	"github.com/pautalab/newsradar/pkg/score"
	"github.com/pautalab/newsradar/pkg/signal"
)

// Run records one batch execution and its summary counts.
type Run struct {
	ID              int64      `db:"id"`
	StartedAt       time.Time  `db:"started_at"`
	FinishedAt      *time.Time `db:"finished_at"`
	WindowMinutes   int        `db:"window_minutes"`
	RawItems        int        `db:"raw_items"`
	Clusters        int        `db:"clusters"`
	SkippedItems    int        `db:"skipped_items"`
	DegradedFetches int        `db:"degraded_fetches"`
}

// ClusterRow is the persisted shape of a cluster.
type ClusterRow struct {
	ID          string    `db:"id"`
	RunID       int64     `db:"run_id"`
	Headline    string    `db:"headline"`
	PublishedAt time.Time `db:"published_at"`
	URLsJSON    string    `db:"urls"`
	SourcesJSON string    `db:"sources"`
	TitlesJSON  string    `db:"titles"`
	TickersJSON string    `db:"tickers"`
	TopicsJSON  string    `db:"topics"`
}

// DecisionRow is the persisted shape of a score breakdown.
type DecisionRow struct {
	ClusterID      string  `db:"cluster_id"`
	RunID          int64   `db:"run_id"`
	Freshness      float64 `db:"freshness"`
	Authority      float64 `db:"authority"`
	SocialVelocity float64 `db:"social_velocity"`
	Engagement     float64 `db:"engagement"`
	Sentiment      float64 `db:"sentiment"`
	BrandFit       float64 `db:"brand_fit"`
	Novelty        float64 `db:"novelty"`
	RiskPenalty    float64 `db:"risk_penalty"`
	NoisePenalty   float64 `db:"noise_penalty"`
	Total          float64 `db:"total"`
	Decision       string  `db:"decision"`
}

// Store is the persistence interface.
type Store interface {
	BeginRun(ctx context.Context, window time.Duration) (int64, error)
	FinishRun(ctx context.Context, run *Run) error
	LatestRun(ctx context.Context) (*Run, error)

	InsertItems(ctx context.Context, runID int64, items []feed.Item) error
	SaveClusters(ctx context.Context, runID int64, clusters []cluster.Cluster) error
	SaveSignals(ctx context.Context, runID int64, signals []signal.Signals) error
	SaveDecision(ctx context.Context, runID int64, b score.Breakdown) error
	ListClusters(ctx context.Context, runID int64) ([]ClusterRow, error)
	ListDecisions(ctx context.Context, runID int64, limit int) ([]DecisionRow, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) BeginRun(ctx context.Context, window time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (started_at, window_minutes) VALUES (?, ?)",
		time.Now().UTC(), int(window.Minutes()))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run *Run) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, raw_items = ?, clusters = ?, skipped_items = ?, degraded_fetches = ?
		WHERE id = ?
	`, now, run.RawItems, run.Clusters, run.SkippedItems, run.DegradedFetches, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", run.ID, err)
	}
	run.FinishedAt = &now
	return nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, "SELECT * FROM runs ORDER BY id DESC LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStore) InsertItems(ctx context.Context, runID int64, items []feed.Item) error {
	for i := range items {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO items (run_id, title, url, source, published_at, summary)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, items[i].Title, items[i].URL, items[i].Source, items[i].PublishedAt, items[i].Summary)
		if err != nil {
			return fmt.Errorf("insert item %q: %w", items[i].Title, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveClusters(ctx context.Context, runID int64, clusters []cluster.Cluster) error {
	for i := range clusters {
		c := &clusters[i]
		urls, _ := json.Marshal(c.URLs)
		sources, _ := json.Marshal(c.Sources)
		titles, _ := json.Marshal(c.Titles)
		tickers, _ := json.Marshal(c.Entities.Tickers)
		topics, _ := json.Marshal(c.Entities.Topics)

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO clusters (id, run_id, headline, published_at, urls, sources, titles, tickers, topics)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, run_id) DO UPDATE SET
				headline = excluded.headline,
				published_at = excluded.published_at,
				urls = excluded.urls,
				sources = excluded.sources,
				titles = excluded.titles,
				tickers = excluded.tickers,
				topics = excluded.topics
		`, c.ID, runID, c.Headline, c.PublishedAt,
			string(urls), string(sources), string(titles), string(tickers), string(topics))
		if err != nil {
			return fmt.Errorf("save cluster %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSignals(ctx context.Context, runID int64, signals []signal.Signals) error {
	for i := range signals {
		sig := &signals[i]
		topics, _ := json.Marshal(sig.TrendsTopics)

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO signals (cluster_id, run_id, volume, engagement_rate, velocity,
				sentiment_mean, sentiment_var, trends_interest, trends_velocity, trends_topics)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(cluster_id, run_id) DO UPDATE SET
				volume = excluded.volume,
				engagement_rate = excluded.engagement_rate,
				velocity = excluded.velocity,
				sentiment_mean = excluded.sentiment_mean,
				sentiment_var = excluded.sentiment_var,
				trends_interest = excluded.trends_interest,
				trends_velocity = excluded.trends_velocity,
				trends_topics = excluded.trends_topics
		`, sig.ClusterID, runID, sig.Volume, sig.EngagementRate, sig.Velocity,
			sig.SentimentMean, sig.SentimentVar, sig.TrendsInterest, sig.TrendsVelocity, string(topics))
		if err != nil {
			return fmt.Errorf("save signals %s: %w", sig.ClusterID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveDecision(ctx context.Context, runID int64, b score.Breakdown) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (cluster_id, run_id, freshness, authority, social_velocity,
			engagement, sentiment, brand_fit, novelty, risk_penalty, noise_penalty, total, decision)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cluster_id, run_id) DO UPDATE SET
			freshness = excluded.freshness,
			authority = excluded.authority,
			social_velocity = excluded.social_velocity,
			engagement = excluded.engagement,
			sentiment = excluded.sentiment,
			brand_fit = excluded.brand_fit,
			novelty = excluded.novelty,
			risk_penalty = excluded.risk_penalty,
			noise_penalty = excluded.noise_penalty,
			total = excluded.total,
			decision = excluded.decision
	`, b.ClusterID, runID, b.Freshness, b.Authority, b.SocialVelocity,
		b.Engagement, b.Sentiment, b.BrandFit, b.Novelty, b.RiskPenalty,
		b.NoisePenalty, b.Total, string(b.Decision))
	if err != nil {
		return fmt.Errorf("save decision %s: %w", b.ClusterID, err)
	}
	return nil
}

func (s *SQLiteStore) ListClusters(ctx context.Context, runID int64) ([]ClusterRow, error) {
	var rows []ClusterRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM clusters WHERE run_id = ? ORDER BY published_at DESC", runID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	return rows, nil
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, runID int64, limit int) ([]DecisionRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []DecisionRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM decisions WHERE run_id = ? ORDER BY total DESC LIMIT ?", runID, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	return rows, nil
}
