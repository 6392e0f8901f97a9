package model

import "math"

// ScoreRecord represents one scored credit application.
type ScoreRecord struct {
	ID      string
	Score   float64 // model score in [0,1]; NaN when the score is missing
	Default bool    // true if the account defaulted
	// Covariates holds the remaining numeric columns of the source row,
	// keyed by column name. Nil when the row carried none.
	Covariates map[string]float64
}

// Covariate returns the named covariate value and whether it was present.
func (r ScoreRecord) Covariate(name string) (float64, bool) {
	v, ok := r.Covariates[name]
	return v, ok
}

// ScoreMissing reports whether the record carries no usable score.
func (r ScoreRecord) ScoreMissing() bool {
	return math.IsNaN(r.Score)
}

// BandedRecord is a ScoreRecord with its assigned risk band.
type BandedRecord struct {
	ScoreRecord
	Band RiskBand
}
