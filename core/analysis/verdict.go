package analysis

import (
	"fmt"

	"github.com/creditlab/riskband/core/model"
)

// Judge decides whether the banding separates risk. Three checks are
// applied: strictly increasing default rates across the observed bands,
// a significant chi-square association, and a positive significant
// logistic slope. All pass: validated. All fail: rejected. Otherwise the
// verdict is marginal. A nil chi or logit counts as a failed check.
func Judge(bands []model.BandSummary, chi *model.ChiSquareResult, logit *model.LogisticSummary, alpha float64, issues []string) model.Verdict {
	v := model.Verdict{Alpha: alpha}
	v.Reasons = append(v.Reasons, issues...)
	passed := 0

	if monotone, reason := monotoneRates(bands); monotone {
		passed++
	} else {
		v.Reasons = append(v.Reasons, reason)
	}

	if chi == nil {
		v.Reasons = append(v.Reasons, "chi-square test unavailable")
	} else if chi.PValue < alpha {
		passed++
	} else {
		v.Reasons = append(v.Reasons, fmt.Sprintf("chi-square not significant (p=%.4f)", chi.PValue))
	}

	if logit == nil {
		v.Reasons = append(v.Reasons, "logistic fit unavailable")
	} else if logit.Slope.Estimate > 0 && logit.Slope.PValue < alpha {
		passed++
	} else {
		v.Reasons = append(v.Reasons, fmt.Sprintf("logistic slope not confirming (estimate=%.4f p=%.4f)",
			logit.Slope.Estimate, logit.Slope.PValue))
	}

	switch passed {
	case 3:
		v.Status = model.VerdictValidated
	case 0:
		v.Status = model.VerdictRejected
	default:
		v.Status = model.VerdictMarginal
	}
	return v
}

// monotoneRates checks strictly increasing default rates over the observed
// bands that contain records. Fewer than two populated bands cannot show
// separation.
func monotoneRates(bands []model.BandSummary) (bool, string) {
	byBand := make(map[model.RiskBand]model.BandSummary, len(bands))
	for _, b := range bands {
		byBand[b.Band] = b
	}
	var rates []float64
	for _, band := range model.ObservedBands {
		s, ok := byBand[band]
		if !ok || s.Count == 0 {
			continue
		}
		rates = append(rates, s.DefaultRate)
	}
	if len(rates) < 2 {
		return false, "fewer than two populated bands"
	}
	for i := 1; i < len(rates); i++ {
		if rates[i] <= rates[i-1] {
			return false, fmt.Sprintf("default rates not strictly increasing across bands (%.4f -> %.4f)",
				rates[i-1], rates[i])
		}
	}
	return true, ""
}
