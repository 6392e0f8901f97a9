package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/creditlab/riskband/core/model"
)

// RotatingJSONLStore stores runs in a JSONL file with automatic rotation.
type RotatingJSONLStore struct {
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes
// and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   false,
	}
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

// Append writes the run and triggers rotation if needed.
func (s *RotatingJSONLStore) Append(ctx context.Context, run model.AnalysisRun) error {
	_ = ctx
	enc := json.NewEncoder(s.logger)
	return enc.Encode(run)
}

// Query reads all store files including rotated ones. Rotated backups are
// named <base>-<timestamp><ext>, so the glob must split off the extension.
func (s *RotatingJSONLStore) Query(ctx context.Context, q RunQuery) ([]model.AnalysisRun, error) {
	_ = ctx
	dir, base := filepath.Split(s.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	files, err := filepath.Glob(filepath.Join(dir, stem+"-*"+ext))
	if err != nil {
		return nil, err
	}
	files = append(files, s.path)
	var res []model.AnalysisRun
	for _, f := range files {
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var r model.AnalysisRun
			if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
				continue
			}
			if q.matches(r) {
				res = append(res, r)
			}
		}
		_ = file.Close()
	}
	return sortAndClip(res, q.Limit), nil
}

// Close closes the underlying rotating writer.
func (s *RotatingJSONLStore) Close() error { return s.logger.Close() }
