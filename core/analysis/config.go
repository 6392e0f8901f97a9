package analysis

import "fmt"

// Config defines validation parameters for the analysis engine.
type Config struct {
	// Alpha is the significance level for the chi-square and Wald tests.
	Alpha float64 `json:"alpha" yaml:"alpha"`
	// MaxIterations bounds the logistic fit.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// Tolerance is the convergence criterion on Newton steps.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	// Threshold is the probability cutoff for classification.
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Alpha == 0 {
		c.Alpha = 0.05
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 25
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-8
	}
	if c.Threshold == 0 {
		c.Threshold = 0.5
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must lie in (0,1), got %v", c.Alpha)
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold must lie in (0,1), got %v", c.Threshold)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", c.Tolerance)
	}
	return nil
}
