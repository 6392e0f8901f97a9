package regress

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/creditlab/riskband/core/model"
)

// ErrDegenerate indicates the outcome column contains a single class, so no
// slope can be estimated.
var ErrDegenerate = errors.New("outcome has a single class")

// ErrNotConverged indicates Newton iterations did not reach the tolerance
// within the iteration budget.
var ErrNotConverged = errors.New("logistic fit did not converge")

// Options controls the iterative fit.
type Options struct {
	MaxIter int
	Tol     float64
}

func (o *Options) setDefaults() {
	if o.MaxIter == 0 {
		o.MaxIter = 25
	}
	if o.Tol == 0 {
		o.Tol = 1e-8
	}
}

// Logistic is a fitted default-on-score model.
type Logistic struct {
	intercept float64
	slope     float64
	summary   model.LogisticSummary
}

// Fit estimates the logistic regression by Newton iterations. Scores must
// be observed (no NaN) and both outcome classes must be present.
func Fit(scores []float64, outcomes []bool, opts Options) (*Logistic, error) {
	opts.setDefaults()
	if len(scores) != len(outcomes) {
		return nil, fmt.Errorf("scores and outcomes differ in length: %d vs %d", len(scores), len(outcomes))
	}
	n := len(scores)
	if n < 3 {
		return nil, fmt.Errorf("need at least 3 observations, have %d", n)
	}
	positives := 0
	for i, s := range scores {
		if math.IsNaN(s) {
			return nil, fmt.Errorf("score at index %d is missing", i)
		}
		if outcomes[i] {
			positives++
		}
	}
	if positives == 0 || positives == n {
		return nil, ErrDegenerate
	}

	b0, b1 := 0.0, 0.0
	iterations := 0
	converged := false
	for iter := 1; iter <= opts.MaxIter; iter++ {
		iterations = iter
		// Gradient and Hessian of the log-likelihood.
		var g0, g1, h00, h01, h11 float64
		for i, s := range scores {
			mu := sigmoid(b0 + b1*s)
			y := 0.0
			if outcomes[i] {
				y = 1
			}
			w := mu * (1 - mu)
			g0 += y - mu
			g1 += (y - mu) * s
			h00 += w
			h01 += w * s
			h11 += w * s * s
		}
		hess := mat.NewSymDense(2, []float64{h00, h01, h01, h11})
		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return nil, fmt.Errorf("%w: information matrix is singular", ErrNotConverged)
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, mat.NewVecDense(2, []float64{g0, g1})); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
		}
		b0 += step.AtVec(0)
		b1 += step.AtVec(1)
		if math.Abs(step.AtVec(0)) < opts.Tol && math.Abs(step.AtVec(1)) < opts.Tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, iterations)
	}

	m := &Logistic{intercept: b0, slope: b1}
	m.summarize(scores, outcomes, positives, iterations)
	return m, nil
}

func (m *Logistic) summarize(scores []float64, outcomes []bool, positives, iterations int) {
	n := len(scores)

	// Observed information at the optimum for Wald standard errors.
	var h00, h01, h11 float64
	for _, s := range scores {
		mu := m.Predict(s)
		w := mu * (1 - mu)
		h00 += w
		h01 += w * s
		h11 += w * s * s
	}
	var cov mat.SymDense
	var chol mat.Cholesky
	se0, se1 := math.NaN(), math.NaN()
	if chol.Factorize(mat.NewSymDense(2, []float64{h00, h01, h01, h11})) {
		if err := chol.InverseTo(&cov); err == nil {
			se0 = math.Sqrt(cov.At(0, 0))
			se1 = math.Sqrt(cov.At(1, 1))
		}
	}

	var ll float64
	probs := make([]float64, n)
	for i, s := range scores {
		eta := m.intercept + m.slope*s
		probs[i] = sigmoid(eta)
		y := 0.0
		if outcomes[i] {
			y = 1
		}
		ll += y*eta - logOnePlusExp(eta)
	}
	pbar := float64(positives) / float64(n)
	nullLL := float64(positives)*math.Log(pbar) + float64(n-positives)*math.Log(1-pbar)

	sum := model.LogisticSummary{
		N:          n,
		Converged:  true,
		Iterations: iterations,
		Intercept:  waldCoefficient(m.intercept, se0),
		Slope:      waldCoefficient(m.slope, se1),
		LogLik:     ll,
		NullLogLik: nullLL,
		PseudoR2:   1 - ll/nullLL,
		AIC:        4 - 2*ll,
		AUC:        auc(probs, outcomes),
	}
	m.summary = sum
}

func waldCoefficient(est, se float64) model.Coefficient {
	c := model.Coefficient{Estimate: est, StdErr: se}
	if se > 0 && !math.IsNaN(se) {
		c.Z = est / se
		c.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(c.Z))
	} else {
		c.PValue = 1
	}
	return c
}

// Summary returns the fitted coefficients and fit statistics.
func (m *Logistic) Summary() model.LogisticSummary { return m.summary }

// Predict returns the default probability for a score.
func (m *Logistic) Predict(score float64) float64 {
	return sigmoid(m.intercept + m.slope*score)
}

// PredictClass applies a probability threshold to Predict.
func (m *Logistic) PredictClass(score, threshold float64) bool {
	return m.Predict(score) >= threshold
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// logOnePlusExp computes log(1+e^x) without overflow.
func logOnePlusExp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// auc computes the area under the ROC curve via the rank-sum formulation
// with midranks for ties.
func auc(probs []float64, outcomes []bool) float64 {
	n := len(probs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		// Midrank for the tie group [i, j).
		r := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = r
		}
		i = j
	}

	var rankSum float64
	pos := 0
	for i, out := range outcomes {
		if out {
			pos++
			rankSum += ranks[i]
		}
	}
	neg := n - pos
	if pos == 0 || neg == 0 {
		return math.NaN()
	}
	return (rankSum - float64(pos)*float64(pos+1)/2) / (float64(pos) * float64(neg))
}
