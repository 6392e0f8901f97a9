// Package metrics defines the sink interface used to record completed
// analysis runs. Implementations live in infra/metrics and can be combined
// with a multi sink.
package metrics

import "time"

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// BandCount carries per-band counts for a completed run.
type BandCount struct {
	Band        string
	Count       int
	DefaultRate float64
}

// RunSample is the per-run observation recorded by sinks.
type RunSample struct {
	RunID     string
	Dataset   string
	Verdict   string
	Records   int
	Duration  time.Duration
	Bands     []BandCount
	Timestamp time.Time
}

// Sink records completed analysis runs for observability purposes.
type Sink interface {
	RecordRun(sample RunSample) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunSample) error { return nil }
