package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/pautalab/newsradar/internal/config"
	"github.com/pautalab/newsradar/internal/logging"
	"github.com/pautalab/newsradar/internal/pipeline"
	"github.com/pautalab/newsradar/internal/store"
	"github.com/pautalab/newsradar/pkg/cluster"
	"github.com/pautalab/newsradar/pkg/feed"
	"github.com/pautalab/newsradar/pkg/report"
	"github.com/pautalab/newsradar/pkg/score"
	sig "github.com/pautalab/newsradar/pkg/signal"
)

type runOptions struct {
	window      string
	mockSocial  bool
	noBrandFit  bool
	postCutoff  float64
	watchCutoff float64
	outDir      string
	every       string
	top         int
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildCollector(cfg *config.Config, log zerolog.Logger) *feed.RSS {
	feeds := make([]feed.Feed, len(cfg.Feeds.Feeds))
	for i, f := range cfg.Feeds.Feeds {
		feeds[i] = feed.Feed{Name: f.Name, URL: f.URL}
	}
	return feed.NewRSS(feeds, cfg.Feeds.ParseWindow(), cfg.Feeds.SkipPatterns, cfg.Feeds.SkipKeywords, log)
}

func buildFuser(cfg *config.Config, log zerolog.Logger) *sig.Fuser {
	var engagement sig.EngagementSource
	var trends sig.TrendSource

	switch {
	case cfg.Signals.Mock:
		engagement = sig.StubEngagement{}
		trends = sig.StubTrends{}
	default:
		if cfg.Signals.Engagement.Enabled && cfg.Signals.Engagement.BaseURL != "" {
			engagement = sig.NewHTTPEngagement(
				cfg.Signals.Engagement.BaseURL,
				cfg.Signals.Engagement.Language,
				cfg.Signals.ParseTimeout(),
			)
		}
		if cfg.Signals.Trends.Enabled && cfg.Signals.Trends.BaseURL != "" {
			trends = sig.NewHTTPTrends(
				cfg.Signals.Trends.BaseURL,
				cfg.Signals.Trends.Geo,
				cfg.Signals.ParseTimeout(),
			)
		}
	}

	lexicon := sig.NewLexicon(cfg.Signals.Sentiment.Positive, cfg.Signals.Sentiment.Negative)
	return sig.NewFuser(engagement, trends, lexicon, sig.Options{
		Workers:    cfg.Signals.Workers,
		RatePerSec: cfg.Signals.RatePerSec,
		Timeout:    cfg.Signals.ParseTimeout(),
		SampleSize: cfg.Signals.Engagement.SampleSize,
	}, log)
}

func buildRunner(cfg *config.Config, db store.Store, log zerolog.Logger) *pipeline.Runner {
	extractor := cluster.NewExtractor(cfg.Scoring.Topics)
	scorer := score.NewScorer(cfg.Scoring, cfg.Brand, cfg.Noise)
	tracker := score.NewTracker(cfg.Scoring.NoveltyCapacity)
	reports := report.NewManager([]report.Emitter{
		report.NewCSV(cfg.Output.Dir),
		report.NewJSON(cfg.Output.Dir),
	})

	return pipeline.New(
		db,
		buildCollector(cfg, log),
		extractor,
		buildFuser(cfg, log),
		scorer,
		tracker,
		reports,
		cfg.Feeds.ParseWindow(),
		log,
	)
}

func applyRunFlags(cfg *config.Config, opts runOptions) {
	if opts.window != "" {
		cfg.Feeds.Window = opts.window
	}
	if opts.mockSocial {
		cfg.Signals.Mock = true
	}
	if opts.noBrandFit {
		cfg.Scoring.NoBrandFit = true
	}
	if opts.postCutoff >= 0 {
		cfg.Scoring.PostCutoff = opts.postCutoff
	}
	if opts.watchCutoff >= 0 {
		cfg.Scoring.WatchCutoff = opts.watchCutoff
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
}

func runBatch(ctx context.Context, opts runOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logging.New(cfg.Log.Level)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	runner := buildRunner(cfg, db, log)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.every != "" {
		interval, err := time.ParseDuration(opts.every)
		if err != nil {
			return fmt.Errorf("parse --every: %w", err)
		}
		err = runner.RunEvery(ctx, interval)
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	batch, err := runner.RunBatch(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}
	if batch != nil {
		printTop(batch, opts.top)
	}
	return nil
}

func runCollect(ctx context.Context, window string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if window != "" {
		cfg.Feeds.Window = window
	}

	log := logging.New(cfg.Log.Level)

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	collector := buildCollector(cfg, log)
	items, err := collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	runID, err := db.BeginRun(ctx, cfg.Feeds.ParseWindow())
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	if err := db.InsertItems(ctx, runID, items); err != nil {
		return fmt.Errorf("persist items: %w", err)
	}

	st := collector.Stats()
	if err := db.FinishRun(ctx, &store.Run{
		ID:           runID,
		RawItems:     len(items),
		SkippedItems: st.MissingTitle + st.MissingURL,
	}); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	fmt.Fprintf(os.Stderr, "collected %d items (%d skipped)\n",
		len(items), st.MissingTitle+st.MissingURL)
	return nil
}

func runDecisions(ctx context.Context, jsonOutput bool, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	run, err := db.LatestRun(ctx)
	if err != nil {
		return fmt.Errorf("no runs yet (try: newsradar run): %w", err)
	}

	rows, err := db.ListDecisions(ctx, run.ID, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("no decisions in the latest run")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL\tDECISION\tBRAND\tVELOCITY\tNOVELTY\tCLUSTER")
	for _, d := range rows {
		fmt.Fprintf(w, "%.2f\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
			d.Total, d.Decision, d.BrandFit, d.SocialVelocity, d.Novelty, d.ClusterID[:12])
	}
	return w.Flush()
}

func runClusters(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	run, err := db.LatestRun(ctx)
	if err != nil {
		return fmt.Errorf("no runs yet (try: newsradar run): %w", err)
	}

	rows, err := db.ListClusters(ctx, run.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PUBLISHED\tTOPICS\tHEADLINE")
	for _, c := range rows {
		var topics []string
		_ = json.Unmarshal([]byte(c.TopicsJSON), &topics)
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			c.PublishedAt.Format(time.RFC3339), joinMax(topics, 3), c.Headline)
	}
	return w.Flush()
}

func printTop(batch *report.Batch, top int) {
	byID := make(map[string]string, len(batch.Clusters))
	for _, c := range batch.Clusters {
		byID[c.ID] = c.Headline
	}

	decisions := batch.Decisions
	// Decisions are in input order; show the highest totals first.
	sorted := make([]int, len(decisions))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return decisions[sorted[i]].Total > decisions[sorted[j]].Total
	})
	if top > 0 && len(sorted) > top {
		sorted = sorted[:top]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL\tDECISION\tHEADLINE")
	for _, idx := range sorted {
		d := decisions[idx]
		fmt.Fprintf(w, "%.2f\t%s\t%s\n", d.Total, d.Decision, byID[d.ClusterID])
	}
	w.Flush()
}

func joinMax(parts []string, max int) string {
	if len(parts) > max {
		parts = parts[:max]
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
