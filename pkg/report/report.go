// Package report emits batch results as the tables downstream tools
// consume: clusters, social signals and decisions.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pautalab/newsradar/pkg/cluster"
	"github.com/pautalab/newsradar/pkg/score"
	"github.com/pautalab/newsradar/pkg/signal"
)

// Summary counts what a batch skipped or degraded. Emitted alongside the
// tables so a run is never silently lossy.
type Summary struct {
	RawItems        int `json:"raw_items"`
	Clusters        int `json:"clusters"`
	SkippedItems    int `json:"skipped_items"`
	DegradedFetches int `json:"degraded_fetches"`
}

// Batch is one completed pipeline run. Slices are index-aligned.
type Batch struct {
	RunID     int64             `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Clusters  []cluster.Cluster `json:"clusters"`
	Signals   []signal.Signals  `json:"signals"`
	Decisions []score.Breakdown `json:"decisions"`
	Summary   Summary           `json:"summary"`
}

// Emitter writes a batch to one destination.
type Emitter interface {
	Name() string
	Emit(ctx context.Context, b *Batch) error
}

// Manager broadcasts a batch to all registered emitters.
type Manager struct {
	emitters []Emitter
}

// NewManager creates a new report manager.
func NewManager(emitters []Emitter) *Manager {
	return &Manager{emitters: emitters}
}

// Broadcast sends the batch to every emitter, joining failures.
func (m *Manager) Broadcast(ctx context.Context, b *Batch) error {
	var errs []error
	for _, e := range m.emitters {
		if err := e.Emit(ctx, b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
