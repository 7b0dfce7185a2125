package feed

import (
	"context"
	"time"
)

// Item is a single raw article as produced by ingestion. Immutable once read.
type Item struct {
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Source      string    `json:"source" db:"source"`
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	Summary     string    `json:"summary" db:"summary"`
}

// Collector produces raw items for a batch run.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]Item, error)
}
