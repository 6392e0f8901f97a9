package model

import "time"

// DatasetSummary describes the ingested dataset before banding.
type DatasetSummary struct {
	Name          string  `json:"name"`
	Rows          int     `json:"rows"`
	Skipped       int     `json:"skipped"`
	MissingScores int     `json:"missing_scores"`
	DefaultRate   float64 `json:"default_rate"`
	ScoreMean     float64 `json:"score_mean"`
	ScoreMin      float64 `json:"score_min"`
	ScoreMax      float64 `json:"score_max"`
}

// BandSummary holds per-band descriptive statistics.
type BandSummary struct {
	Band        RiskBand `json:"band"`
	Count       int      `json:"count"`
	Share       float64  `json:"share"`
	Defaults    int      `json:"defaults"`
	DefaultRate float64  `json:"default_rate"`
	ScoreMean   float64  `json:"score_mean"`
	ScoreStdDev float64  `json:"score_stddev"`
	ScoreMin    float64  `json:"score_min"`
	ScoreMax    float64  `json:"score_max"`
}

// ChiSquareResult reports the band/default independence test.
type ChiSquareResult struct {
	Statistic   float64 `json:"statistic"`
	DF          int     `json:"df"`
	PValue      float64 `json:"p_value"`
	MinExpected float64 `json:"min_expected"`
	// LowExpected flags expected cell counts below 5, where the
	// chi-square approximation is unreliable.
	LowExpected bool `json:"low_expected"`
}

// Coefficient holds one fitted logistic regression term.
type Coefficient struct {
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	Z        float64 `json:"z"`
	PValue   float64 `json:"p_value"`
}

// LogisticSummary reports the default-on-score logistic fit.
type LogisticSummary struct {
	N          int         `json:"n"`
	Converged  bool        `json:"converged"`
	Iterations int         `json:"iterations"`
	Intercept  Coefficient `json:"intercept"`
	Slope      Coefficient `json:"slope"`
	LogLik     float64     `json:"log_lik"`
	NullLogLik float64     `json:"null_log_lik"`
	PseudoR2   float64     `json:"pseudo_r2"`
	AIC        float64     `json:"aic"`
	AUC        float64     `json:"auc"`
	// Threshold and Accuracy describe in-sample classification at the
	// configured probability cutoff.
	Threshold float64 `json:"threshold"`
	Accuracy  float64 `json:"accuracy"`
}

// VerdictStatus represents the outcome of the banding validation.
type VerdictStatus string

const (
	VerdictValidated VerdictStatus = "validated"
	VerdictMarginal  VerdictStatus = "marginal"
	VerdictRejected  VerdictStatus = "rejected"
)

// Verdict is the judgment on whether the banding separates risk.
type Verdict struct {
	Status  VerdictStatus `json:"status"`
	Alpha   float64       `json:"alpha"`
	Reasons []string      `json:"reasons,omitempty"`
}

// AnalysisRun captures one full pipeline execution.
type AnalysisRun struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Summary   DatasetSummary  `json:"summary"`
	Bands     []BandSummary   `json:"bands"`
	ChiSquare ChiSquareResult `json:"chi_square"`
	Logistic  LogisticSummary `json:"logistic"`
	Verdict   Verdict         `json:"verdict"`
}
