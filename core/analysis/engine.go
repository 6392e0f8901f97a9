// Package analysis orchestrates the banding pipeline: band assignment,
// descriptive statistics, the chi-square association test, the logistic
// validation fit and the final verdict. Completed runs are persisted and
// published on the event bus.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/binning"
	"github.com/creditlab/riskband/core/dataset"
	"github.com/creditlab/riskband/core/logger"
	"github.com/creditlab/riskband/core/model"
	"github.com/creditlab/riskband/core/regress"
	"github.com/creditlab/riskband/core/stats"
	"github.com/creditlab/riskband/internal/eventbus"
)

// Engine runs the full analysis pipeline.
type Engine struct {
	binner binning.Binner
	cfg    Config
	store  store.RunStore
	bus    eventbus.EventBus
	log    logger.Logger
}

// New creates an Engine. The store and bus may be nil, in which case runs
// are neither persisted nor published.
func New(binner binning.Binner, cfg Config, st store.RunStore, bus eventbus.EventBus, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := binner.Validate(); err != nil {
		return nil, err
	}
	return &Engine{binner: binner, cfg: cfg, store: st, bus: bus, log: log}, nil
}

// Analyze executes the pipeline over the dataset. Statistical steps that
// cannot run on the data at hand (a degenerate outcome column, a
// non-converging fit) are recorded on the verdict instead of aborting the
// run; only empty input and persistence failures return an error.
func (e *Engine) Analyze(ctx context.Context, ds dataset.Dataset) (model.AnalysisRun, error) {
	if len(ds.Records) == 0 {
		return model.AnalysisRun{}, fmt.Errorf("dataset %s has no records", ds.Name)
	}
	started := time.Now().UTC()
	run := model.AnalysisRun{
		ID:        uuid.NewString(),
		StartedAt: started,
		Summary:   stats.Summarize(ds.Name, ds.Records, ds.Skipped),
	}

	banded := e.binner.Apply(ds.Records)
	run.Bands = stats.Describe(banded)
	if e.log != nil {
		for _, b := range run.Bands {
			e.log.Debugw("band assigned", map[string]any{
				"band": b.Band.String(), "count": b.Count, "default_rate": b.DefaultRate,
			})
		}
	}

	var issues []string

	var chi *model.ChiSquareResult
	res, err := stats.NewContingencyTable(banded).ChiSquare()
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		issues = append(issues, fmt.Sprintf("chi-square skipped: %v", err))
		if e.log != nil {
			e.log.Warnf("chi-square skipped: %v", err)
		}
	case err != nil:
		return model.AnalysisRun{}, fmt.Errorf("chi-square: %w", err)
	default:
		run.ChiSquare = res
		chi = &run.ChiSquare
		if res.LowExpected && e.log != nil {
			e.log.Warnf("chi-square expected cell below 5 (min %.2f), approximation unreliable", res.MinExpected)
		}
	}

	var logit *model.LogisticSummary
	scores, outcomes := observed(ds.Records)
	fit, err := regress.Fit(scores, outcomes, regress.Options{MaxIter: e.cfg.MaxIterations, Tol: e.cfg.Tolerance})
	if err != nil {
		issues = append(issues, fmt.Sprintf("logistic fit failed: %v", err))
		if e.log != nil {
			e.log.Warnf("logistic fit failed: %v", err)
		}
	} else {
		run.Logistic = fit.Summary()
		run.Logistic.Threshold = e.cfg.Threshold
		run.Logistic.Accuracy = accuracy(fit, scores, outcomes, e.cfg.Threshold)
		logit = &run.Logistic
	}

	run.Verdict = Judge(run.Bands, chi, logit, e.cfg.Alpha, issues)
	run.Duration = time.Since(started)

	if e.store != nil {
		if err := e.store.Append(ctx, run); err != nil {
			return model.AnalysisRun{}, fmt.Errorf("persist run: %w", err)
		}
	}
	if e.bus != nil {
		e.bus.Publish(eventbus.RunCompleted{Run: run})
	}
	if e.log != nil {
		e.log.Infof("analysis %s on %s: %s (%d records, %.0fms)",
			run.ID, ds.Name, run.Verdict.Status, run.Summary.Rows,
			float64(run.Duration)/float64(time.Millisecond))
	}
	return run, nil
}

func observed(recs []model.ScoreRecord) ([]float64, []bool) {
	var scores []float64
	var outcomes []bool
	for _, r := range recs {
		if r.ScoreMissing() {
			continue
		}
		scores = append(scores, r.Score)
		outcomes = append(outcomes, r.Default)
	}
	return scores, outcomes
}

func accuracy(m *regress.Logistic, scores []float64, outcomes []bool, threshold float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	correct := 0
	for i, s := range scores {
		if m.PredictClass(s, threshold) == outcomes[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(scores))
}
