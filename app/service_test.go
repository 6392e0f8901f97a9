package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/creditlab/riskband/config"
	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/dataset"
	"github.com/creditlab/riskband/core/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	csv := filepath.Join(dir, "portfolio.csv")
	data := "score,default\n"
	rows := []struct {
		score    string
		defaults int
		sound    int
	}{
		{"0.1", 2, 18},
		{"0.5", 6, 14},
		{"0.9", 15, 5},
	}
	for _, r := range rows {
		for i := 0; i < r.defaults; i++ {
			data += r.score + ",1\n"
		}
		for i := 0; i < r.sound; i++ {
			data += r.score + ",0\n"
		}
	}
	require.NoError(t, os.WriteFile(csv, []byte(data), 0o644))

	cfg := &config.Config{}
	cfg.Dataset = dataset.Config{Path: csv}
	cfg.Dataset.SetDefaults()
	cfg.Binning.SetDefaults()
	cfg.Model.SetDefaults()
	cfg.Storage = store.Config{Backend: "jsonl", Path: filepath.Join(dir, "runs.jsonl")}
	cfg.Metrics.SetDefaults()
	cfg.API.SetDefaults()
	return cfg
}

func TestServiceOneShotRun(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	require.NoError(t, svc.Run(context.Background()))

	runs, err := svc.Store.Query(context.Background(), store.RunQuery{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, model.VerdictValidated, runs[0].Verdict.Status)
	require.Equal(t, "portfolio", runs[0].Summary.Name)
}

func TestServiceMissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Path = filepath.Join(t.TempDir(), "absent.csv")
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	require.Error(t, svc.Run(context.Background()))
}
