package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSON dumps the whole batch to raw.json for debugging and labeling tools.
type JSON struct {
	dir string
}

// NewJSON creates a JSON emitter writing into dir.
func NewJSON(dir string) *JSON {
	return &JSON{dir: dir}
}

func (j *JSON) Name() string { return "json" }

func (j *JSON) Emit(_ context.Context, b *Batch) error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", j.dir, err)
	}

	path := filepath.Join(j.dir, "raw.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
