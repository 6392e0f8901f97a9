package binning

import (
	"fmt"

	"github.com/creditlab/riskband/core/model"
)

// Default cut points between the Low/Medium and Medium/High bands.
const (
	DefaultLowMax  = 0.3
	DefaultHighMin = 0.7
)

// Config defines the banding cut points loaded from configuration.
type Config struct {
	// LowMax is the exclusive upper bound of the Low band.
	LowMax float64 `json:"low_max" yaml:"low_max"`
	// HighMin is the inclusive lower bound of the High band.
	HighMin float64 `json:"high_min" yaml:"high_min"`
}

// SetDefaults applies the standard cut points when unset.
func (c *Config) SetDefaults() {
	if c.LowMax == 0 && c.HighMin == 0 {
		c.LowMax = DefaultLowMax
		c.HighMin = DefaultHighMin
	}
}

// Validate checks that the cut points form increasing interior boundaries.
func (c Config) Validate() error {
	if c.LowMax <= 0 || c.HighMin >= 1 {
		return fmt.Errorf("cut points must lie inside (0,1): low_max=%v high_min=%v", c.LowMax, c.HighMin)
	}
	if c.LowMax >= c.HighMin {
		return fmt.Errorf("low_max %v must be below high_min %v", c.LowMax, c.HighMin)
	}
	return nil
}

// Binner maps scores to risk bands. Intervals are half-open: a score equal
// to a cut point belongs to the upper band.
type Binner struct {
	LowMax  float64
	HighMin float64
}

// New returns a Binner with the default cut points.
func New() Binner {
	return Binner{LowMax: DefaultLowMax, HighMin: DefaultHighMin}
}

// FromConfig builds a Binner from a validated Config.
func FromConfig(cfg Config) (Binner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Binner{}, err
	}
	return Binner{LowMax: cfg.LowMax, HighMin: cfg.HighMin}, nil
}

// Validate checks that the cut points are usable.
func (b Binner) Validate() error {
	return Config{LowMax: b.LowMax, HighMin: b.HighMin}.Validate()
}

// Assign returns the band for a single score. NaN maps to Missing.
func (b Binner) Assign(score float64) model.RiskBand {
	switch {
	case score != score: // NaN
		return model.BandMissing
	case score < b.LowMax:
		return model.BandLow
	case score < b.HighMin:
		return model.BandMedium
	default:
		return model.BandHigh
	}
}

// Apply bands every record, preserving input order.
func (b Binner) Apply(recs []model.ScoreRecord) []model.BandedRecord {
	out := make([]model.BandedRecord, len(recs))
	for i, r := range recs {
		out[i] = model.BandedRecord{ScoreRecord: r, Band: b.Assign(r.Score)}
	}
	return out
}

// Counts tallies records per band in report order.
func Counts(recs []model.BandedRecord) map[model.RiskBand]int {
	counts := make(map[model.RiskBand]int, len(model.Bands))
	for _, r := range recs {
		counts[r.Band]++
	}
	return counts
}
