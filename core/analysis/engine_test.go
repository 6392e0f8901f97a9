package analysis

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/binning"
	"github.com/creditlab/riskband/core/dataset"
	"github.com/creditlab/riskband/core/model"
	"github.com/creditlab/riskband/internal/eventbus"
)

func group(score float64, defaults, sound int) []model.ScoreRecord {
	var out []model.ScoreRecord
	for i := 0; i < defaults; i++ {
		out = append(out, model.ScoreRecord{Score: score, Default: true})
	}
	for i := 0; i < sound; i++ {
		out = append(out, model.ScoreRecord{Score: score})
	}
	return out
}

// separatedData yields rising default rates across the three bands without
// perfect separation, so the logistic fit converges.
func separatedData() dataset.Dataset {
	var recs []model.ScoreRecord
	recs = append(recs, group(0.1, 2, 18)...)
	recs = append(recs, group(0.5, 6, 14)...)
	recs = append(recs, group(0.9, 15, 5)...)
	for i := 0; i < 3; i++ {
		recs = append(recs, model.ScoreRecord{Score: math.NaN()})
	}
	return dataset.Dataset{Name: "apps", Records: recs, Skipped: 1}
}

func TestEngineValidatesSeparatedBanding(t *testing.T) {
	eng, err := New(binning.New(), Config{}, nil, nil, nil)
	require.NoError(t, err)

	run, err := eng.Analyze(context.Background(), separatedData())
	require.NoError(t, err)

	require.Equal(t, model.VerdictValidated, run.Verdict.Status, "reasons: %v", run.Verdict.Reasons)
	require.NotEmpty(t, run.ID)
	require.Equal(t, 63, run.Summary.Rows)
	require.Equal(t, 1, run.Summary.Skipped)
	require.Equal(t, 3, run.Summary.MissingScores)

	byBand := map[model.RiskBand]model.BandSummary{}
	for _, b := range run.Bands {
		byBand[b.Band] = b
	}
	require.Equal(t, 20, byBand[model.BandLow].Count)
	require.Equal(t, 20, byBand[model.BandMedium].Count)
	require.Equal(t, 20, byBand[model.BandHigh].Count)
	require.Equal(t, 3, byBand[model.BandMissing].Count)
	require.InDelta(t, 0.1, byBand[model.BandLow].DefaultRate, 1e-12)
	require.InDelta(t, 0.75, byBand[model.BandHigh].DefaultRate, 1e-12)

	require.Equal(t, 2, run.ChiSquare.DF)
	require.Less(t, run.ChiSquare.PValue, 0.05)

	require.True(t, run.Logistic.Converged)
	require.Greater(t, run.Logistic.Slope.Estimate, 0.0)
	require.Less(t, run.Logistic.Slope.PValue, 0.05)
	require.Equal(t, 60, run.Logistic.N, "missing scores stay out of the fit")
	require.Greater(t, run.Logistic.AUC, 0.5)
	require.Greater(t, run.Logistic.Accuracy, 0.5)
	require.Equal(t, 0.5, run.Logistic.Threshold)
}

func TestEngineRejectsFlatBanding(t *testing.T) {
	var recs []model.ScoreRecord
	recs = append(recs, group(0.1, 5, 15)...)
	recs = append(recs, group(0.5, 5, 15)...)
	recs = append(recs, group(0.9, 5, 15)...)

	eng, err := New(binning.New(), Config{}, nil, nil, nil)
	require.NoError(t, err)
	run, err := eng.Analyze(context.Background(), dataset.Dataset{Name: "flat", Records: recs})
	require.NoError(t, err)

	require.Equal(t, model.VerdictRejected, run.Verdict.Status)
	require.Len(t, run.Verdict.Reasons, 3)
}

func TestEngineDegenerateOutcome(t *testing.T) {
	var recs []model.ScoreRecord
	recs = append(recs, group(0.1, 0, 10)...)
	recs = append(recs, group(0.9, 0, 10)...)

	eng, err := New(binning.New(), Config{}, nil, nil, nil)
	require.NoError(t, err)
	run, err := eng.Analyze(context.Background(), dataset.Dataset{Name: "deg", Records: recs})
	require.NoError(t, err)

	require.Equal(t, model.VerdictRejected, run.Verdict.Status)
	// Both the chi-square skip and the fit failure are surfaced.
	require.GreaterOrEqual(t, len(run.Verdict.Reasons), 2)
	require.False(t, run.Logistic.Converged)
}

func TestEngineEmptyDataset(t *testing.T) {
	eng, err := New(binning.New(), Config{}, nil, nil, nil)
	require.NoError(t, err)
	_, err = eng.Analyze(context.Background(), dataset.Dataset{Name: "empty"})
	require.Error(t, err)
}

func TestEnginePersistsAndPublishes(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewJSONLStore(filepath.Join(dir, "runs.jsonl"))
	require.NoError(t, err)
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	eng, err := New(binning.New(), Config{}, st, bus, nil)
	require.NoError(t, err)
	run, err := eng.Analyze(context.Background(), separatedData())
	require.NoError(t, err)

	stored, err := st.Query(context.Background(), store.RunQuery{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, run.ID, stored[0].ID)

	select {
	case ev := <-sub:
		rc, ok := ev.(eventbus.RunCompleted)
		require.True(t, ok)
		require.Equal(t, run.ID, rc.Run.ID)
	case <-time.After(time.Second):
		t.Fatal("run event not published")
	}
}

func TestEngineRejectsBadConfig(t *testing.T) {
	_, err := New(binning.New(), Config{Alpha: 1.5}, nil, nil, nil)
	require.Error(t, err)

	_, err = New(binning.Binner{LowMax: 0.9, HighMin: 0.1}, Config{}, nil, nil, nil)
	require.Error(t, err)
}
