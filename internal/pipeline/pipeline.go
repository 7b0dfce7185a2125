// Package pipeline orchestrates one batch: collect, cluster, fetch
// signals, score sequentially against the novelty memory, persist and emit.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pautalab/newsradar/internal/store"
	"github.com/pautalab/newsradar/pkg/cluster"
	"github.com/pautalab/newsradar/pkg/feed"
	"github.com/pautalab/newsradar/pkg/report"
	"github.com/pautalab/newsradar/pkg/score"
	"github.com/pautalab/newsradar/pkg/signal"
)

// Runner executes batches.
type Runner struct {
	store     store.Store
	collector feed.Collector
	extractor *cluster.Extractor
	fuser     *signal.Fuser
	scorer    *score.Scorer
	tracker   *score.Tracker
	reports   *report.Manager
	window    time.Duration
	log       zerolog.Logger
}

// New wires a batch runner. The novelty tracker lives here and carries
// over between batches of the same process.
func New(
	s store.Store,
	collector feed.Collector,
	extractor *cluster.Extractor,
	fuser *signal.Fuser,
	scorer *score.Scorer,
	tracker *score.Tracker,
	reports *report.Manager,
	window time.Duration,
	log zerolog.Logger,
) *Runner {
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &Runner{
		store:     s,
		collector: collector,
		extractor: extractor,
		fuser:     fuser,
		scorer:    scorer,
		tracker:   tracker,
		reports:   reports,
		window:    window,
		log:       log,
	}
}

// RunBatch executes one full batch. Transient failures degrade; the batch
// always completes with whatever clusters were scored. Cancellation stops
// between clusters, never mid-cluster, with scored decisions already
// checkpointed in the store.
func (r *Runner) RunBatch(ctx context.Context) (*report.Batch, error) {
	started := time.Now().UTC()

	runID, err := r.store.BeginRun(ctx, r.window)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	r.log.Info().Dur("window", r.window).Msg("collecting feeds")
	items, err := r.collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	skipped := 0
	if rss, ok := r.collector.(*feed.RSS); ok {
		st := rss.Stats()
		skipped = st.MissingTitle + st.MissingURL
		r.log.Info().
			Int("missing_title", st.MissingTitle).
			Int("missing_url", st.MissingURL).
			Int("boilerplate", st.Boilerplate).
			Int("out_of_window", st.OutOfWindow).
			Msg("collection skip counts")
	}

	if err := r.store.InsertItems(ctx, runID, items); err != nil {
		return nil, fmt.Errorf("persist items: %w", err)
	}

	clusters := r.extractor.Build(items)
	r.log.Info().Int("items", len(items)).Int("clusters", len(clusters)).Msg("clustered")

	if err := r.store.SaveClusters(ctx, runID, clusters); err != nil {
		return nil, fmt.Errorf("persist clusters: %w", err)
	}

	signals, err := r.fuser.FuseAll(ctx, clusters, r.window)
	if err != nil {
		// Cancellation mid-fetch still aborts cleanly; partial fetch
		// results are neutral records.
		r.log.Warn().Err(err).Msg("signal collection interrupted")
	}
	if err := r.store.SaveSignals(ctx, runID, signals); err != nil {
		return nil, fmt.Errorf("persist signals: %w", err)
	}

	// Scoring stays sequential in input order: each cluster reads the
	// novelty memory, is scored, then appends its tokens. Parallelizing
	// this would let near-duplicates both score as novel.
	decisions := make([]score.Breakdown, 0, len(clusters))
	aborted := false
	for i := range clusters {
		if ctx.Err() != nil {
			aborted = true
			break
		}

		b := r.scorer.Score(clusters[i], signals[i], r.tracker)
		if err := r.store.SaveDecision(ctx, runID, b); err != nil {
			return nil, fmt.Errorf("persist decision: %w", err)
		}
		r.tracker.Push(cluster.HeadlineTokens(clusters[i].Headline))
		decisions = append(decisions, b)
	}

	batch := &report.Batch{
		RunID:     runID,
		StartedAt: started,
		Clusters:  clusters[:len(decisions)],
		Signals:   signals[:len(decisions)],
		Decisions: decisions,
		Summary: report.Summary{
			RawItems:        len(items),
			Clusters:        len(clusters),
			SkippedItems:    skipped,
			DegradedFetches: r.fuser.Degraded(),
		},
	}

	run := &store.Run{
		ID:              runID,
		RawItems:        len(items),
		Clusters:        len(decisions),
		SkippedItems:    skipped,
		DegradedFetches: batch.Summary.DegradedFetches,
	}
	if err := r.store.FinishRun(ctx, run); err != nil {
		r.log.Warn().Err(err).Msg("finish run")
	}

	if r.reports != nil {
		if err := r.reports.Broadcast(ctx, batch); err != nil {
			r.log.Warn().Err(err).Msg("emit reports")
		}
	}

	r.log.Info().
		Int64("run_id", runID).
		Int("scored", len(decisions)).
		Int("skipped_items", skipped).
		Int("degraded_fetches", batch.Summary.DegradedFetches).
		Msg("batch complete")

	if aborted {
		return batch, ctx.Err()
	}
	return batch, nil
}

// RunEvery repeats RunBatch on a fixed interval until ctx is cancelled.
// The first batch runs immediately.
func (r *Runner) RunEvery(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	if _, err := r.RunBatch(ctx); err != nil && ctx.Err() == nil {
		r.log.Error().Err(err).Msg("batch failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("runner stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunBatch(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("batch failed")
			}
		}
	}
}
