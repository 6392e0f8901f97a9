package model

import "fmt"

// RiskBand defines the ordinal category assigned to a credit score.
type RiskBand int

const (
	BandLow RiskBand = iota
	BandMedium
	BandHigh
	BandMissing
)

// Bands lists the bands in report order. Missing sorts last and is
// excluded from ordinal comparisons.
var Bands = []RiskBand{BandLow, BandMedium, BandHigh, BandMissing}

// ObservedBands lists the bands that carry an observed score.
var ObservedBands = []RiskBand{BandLow, BandMedium, BandHigh}

// String returns a human-readable representation of the band.
func (b RiskBand) String() string {
	switch b {
	case BandLow:
		return "Low"
	case BandMedium:
		return "Medium"
	case BandHigh:
		return "High"
	case BandMissing:
		return "Missing"
	default:
		return "unknown"
	}
}

// ParseBand converts a label back to a RiskBand.
func ParseBand(s string) (RiskBand, bool) {
	switch s {
	case "Low":
		return BandLow, true
	case "Medium":
		return BandMedium, true
	case "High":
		return BandHigh, true
	case "Missing":
		return BandMissing, true
	}
	return 0, false
}

// MarshalText encodes the band as its label so JSON and CSV carry
// "Low"/"Medium"/"High"/"Missing" instead of integers.
func (b RiskBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a band label.
func (b *RiskBand) UnmarshalText(text []byte) error {
	v, ok := ParseBand(string(text))
	if !ok {
		return fmt.Errorf("unknown risk band %q", string(text))
	}
	*b = v
	return nil
}
