package feed

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/pautalab/newsradar/pkg/normalize"
)

// Feed is a named RSS/Atom feed URL.
type Feed struct {
	Name string
	URL  string
}

// SkipStats counts items rejected during collection, reported in the
// batch summary.
type SkipStats struct {
	MissingTitle int
	MissingURL   int
	Boilerplate  int
	OutOfWindow  int
}

// RSS ingests raw articles from RSS/Atom feeds.
type RSS struct {
	client       *http.Client
	parser       *gofeed.Parser
	feeds        []Feed
	window       time.Duration
	skipPatterns []*regexp.Regexp
	skipKeywords []string
	log          zerolog.Logger

	stats SkipStats
}

// NewRSS creates a new RSS collector. Invalid skip patterns are dropped
// with a warning rather than failing the whole run.
func NewRSS(feeds []Feed, window time.Duration, skipPatterns, skipKeywords []string, log zerolog.Logger) *RSS {
	var compiled []*regexp.Regexp
	for _, p := range skipPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warn().Str("pattern", p).Err(err).Msg("skip pattern does not compile")
			continue
		}
		compiled = append(compiled, re)
	}
	if window <= 0 {
		window = 6 * time.Hour
	}
	return &RSS{
		client:       &http.Client{Timeout: 30 * time.Second},
		parser:       gofeed.NewParser(),
		feeds:        feeds,
		window:       window,
		skipPatterns: compiled,
		skipKeywords: skipKeywords,
		log:          log,
	}
}

func (r *RSS) Name() string { return "rss" }

// Stats returns the skip counters accumulated by the last Collect call.
func (r *RSS) Stats() SkipStats { return r.stats }

// Collect fetches all configured feeds. A failing feed is logged and
// skipped; it never aborts the batch.
func (r *RSS) Collect(ctx context.Context) ([]Item, error) {
	r.stats = SkipStats{}
	var all []Item
	for _, f := range r.feeds {
		items, err := r.collectFeed(ctx, f)
		if err != nil {
			r.log.Warn().Str("feed", f.Name).Err(err).Msg("feed fetch failed")
			continue
		}
		all = append(all, items...)
	}
	return all, nil
}

func (r *RSS) collectFeed(ctx context.Context, f Feed) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", f.Name, err)
	}
	req.Header.Set("User-Agent", "newsradar/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", f.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", f.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", f.Name, err)
	}

	cutoff := time.Now().UTC().Add(-r.window)
	var items []Item

	for _, entry := range parsed.Items {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			r.stats.MissingTitle++
			continue
		}

		link := strings.TrimSpace(entry.Link)
		if link == "" && len(entry.Links) > 0 {
			link = strings.TrimSpace(entry.Links[0])
		}
		if link == "" {
			r.stats.MissingURL++
			continue
		}

		if r.isBoilerplate(title) {
			r.stats.Boilerplate++
			continue
		}

		published := r.publishedAt(entry)
		if published.Before(cutoff) {
			r.stats.OutOfWindow++
			continue
		}

		source := normalize.DomainFromURL(link)
		if source == "" {
			source = "unknown"
		}

		items = append(items, Item{
			Title:       title,
			URL:         link,
			Source:      source,
			PublishedAt: published,
			Summary:     strings.TrimSpace(entry.Description),
		})
	}
	return items, nil
}

// publishedAt picks the first parseable of published/updated and falls
// back to now, logged at debug level.
func (r *RSS) publishedAt(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if t, ok := normalize.ParseTimestamp(raw); ok {
			return t
		}
	}
	r.log.Debug().Str("title", entry.Title).Msg("no parseable date, using now")
	return time.Now().UTC()
}

func (r *RSS) isBoilerplate(title string) bool {
	lower := strings.ToLower(title)
	for _, re := range r.skipPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	for _, kw := range r.skipKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
