package stats

import (
	"errors"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/creditlab/riskband/core/model"
)

// ErrInsufficientData indicates the contingency table has fewer than two
// populated bands, so independence cannot be tested.
var ErrInsufficientData = errors.New("contingency table needs at least two populated bands")

// ContingencyTable tabulates default counts per observed band. Records in
// the Missing band are excluded; they carry no score to validate.
type ContingencyTable struct {
	Bands    []model.RiskBand
	Defaults []float64 // defaults per band
	Sound    []float64 // non-defaults per band
}

// NewContingencyTable builds the band×default table from banded records.
func NewContingencyTable(recs []model.BandedRecord) *ContingencyTable {
	idx := make(map[model.RiskBand]int, len(model.ObservedBands))
	t := &ContingencyTable{}
	for i, b := range model.ObservedBands {
		idx[b] = i
		t.Bands = append(t.Bands, b)
	}
	t.Defaults = make([]float64, len(t.Bands))
	t.Sound = make([]float64, len(t.Bands))
	for _, r := range recs {
		i, ok := idx[r.Band]
		if !ok {
			continue
		}
		if r.Default {
			t.Defaults[i]++
		} else {
			t.Sound[i]++
		}
	}
	return t
}

// Total returns the number of observations in the table.
func (t *ContingencyTable) Total() float64 {
	var n float64
	for i := range t.Bands {
		n += t.Defaults[i] + t.Sound[i]
	}
	return n
}

// ChiSquare runs the chi-square test of independence between band and
// outcome. Empty bands are dropped before computing degrees of freedom.
func (t *ContingencyTable) ChiSquare() (model.ChiSquareResult, error) {
	var obs, rowTotals []float64
	for i := range t.Bands {
		rt := t.Defaults[i] + t.Sound[i]
		if rt == 0 {
			continue
		}
		obs = append(obs, t.Defaults[i], t.Sound[i])
		rowTotals = append(rowTotals, rt)
	}
	rows := len(rowTotals)
	if rows < 2 {
		return model.ChiSquareResult{}, ErrInsufficientData
	}

	var n, colDefault float64
	for i := 0; i < rows; i++ {
		n += rowTotals[i]
		colDefault += obs[2*i]
	}
	colSound := n - colDefault
	if colDefault == 0 || colSound == 0 {
		return model.ChiSquareResult{}, ErrInsufficientData
	}

	expected := make([]float64, len(obs))
	minExpected := n
	for i := 0; i < rows; i++ {
		expected[2*i] = rowTotals[i] * colDefault / n
		expected[2*i+1] = rowTotals[i] * colSound / n
		if expected[2*i] < minExpected {
			minExpected = expected[2*i]
		}
		if expected[2*i+1] < minExpected {
			minExpected = expected[2*i+1]
		}
	}

	statistic := stat.ChiSquare(obs, expected)
	df := rows - 1 // (rows-1)*(2-1)
	dist := distuv.ChiSquared{K: float64(df)}
	res := model.ChiSquareResult{
		Statistic:   statistic,
		DF:          df,
		PValue:      dist.Survival(statistic),
		MinExpected: minExpected,
		LowExpected: minExpected < 5,
	}
	return res, nil
}
