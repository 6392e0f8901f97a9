// Package stats computes descriptive statistics over banded score records
// and the chi-square association test between band and default outcome.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/creditlab/riskband/core/model"
)

// Summarize computes dataset-level statistics over the observed scores.
func Summarize(name string, recs []model.ScoreRecord, skipped int) model.DatasetSummary {
	sum := model.DatasetSummary{Name: name, Rows: len(recs), Skipped: skipped}
	var scores []float64
	defaults := 0
	for _, r := range recs {
		if r.Default {
			defaults++
		}
		if r.ScoreMissing() {
			sum.MissingScores++
			continue
		}
		scores = append(scores, r.Score)
	}
	if len(recs) > 0 {
		sum.DefaultRate = float64(defaults) / float64(len(recs))
	}
	if len(scores) > 0 {
		sum.ScoreMean = stat.Mean(scores, nil)
		sum.ScoreMin = floats.Min(scores)
		sum.ScoreMax = floats.Max(scores)
	}
	return sum
}

// Describe aggregates records per band in report order. Bands with no
// records still appear with zero counts so reports keep a fixed shape.
func Describe(recs []model.BandedRecord) []model.BandSummary {
	byBand := make(map[model.RiskBand][]model.BandedRecord)
	for _, r := range recs {
		byBand[r.Band] = append(byBand[r.Band], r)
	}
	total := len(recs)

	out := make([]model.BandSummary, 0, len(model.Bands))
	for _, band := range model.Bands {
		group := byBand[band]
		s := model.BandSummary{Band: band, Count: len(group)}
		if total > 0 {
			s.Share = float64(len(group)) / float64(total)
		}
		var scores []float64
		for _, r := range group {
			if r.Default {
				s.Defaults++
			}
			if !r.ScoreMissing() {
				scores = append(scores, r.Score)
			}
		}
		if len(group) > 0 {
			s.DefaultRate = float64(s.Defaults) / float64(len(group))
		}
		if len(scores) > 0 {
			s.ScoreMean = stat.Mean(scores, nil)
			s.ScoreMin = floats.Min(scores)
			s.ScoreMax = floats.Max(scores)
		}
		if len(scores) > 1 {
			s.ScoreStdDev = stat.StdDev(scores, nil)
		}
		out = append(out, s)
	}
	return out
}
