// Package store persists analysis runs and supports querying them back for
// reports and the HTTP API. Backends: plain JSONL, size-rotated JSONL and
// SQLite.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/creditlab/riskband/core/model"
)

// RunQuery defines filters for retrieving runs.
type RunQuery struct {
	Start   time.Time
	End     time.Time
	Dataset string
	Verdict model.VerdictStatus
	Limit   int
}

func (q RunQuery) matches(r model.AnalysisRun) bool {
	if !q.Start.IsZero() && r.StartedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.StartedAt.After(q.End) {
		return false
	}
	if q.Dataset != "" && r.Summary.Name != q.Dataset {
		return false
	}
	if q.Verdict != "" && r.Verdict.Status != q.Verdict {
		return false
	}
	return true
}

// RunStore persists AnalysisRuns and supports querying.
type RunStore interface {
	Append(ctx context.Context, run model.AnalysisRun) error
	// Query returns matching runs, newest first.
	Query(ctx context.Context, q RunQuery) ([]model.AnalysisRun, error)
	Close() error
}

// Config defines settings for run storage and rotation.
type Config struct {
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers JSONL rotation when the file exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "runs.jsonl"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Open builds the configured store.
func Open(cfg Config) (RunStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	}
}

// sortAndClip orders runs newest first and applies the query limit.
func sortAndClip(runs []model.AnalysisRun, limit int) []model.AnalysisRun {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs
}
