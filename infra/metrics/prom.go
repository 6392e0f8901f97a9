package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/creditlab/riskband/core/metrics"
)

// PromSink records analysis runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	bandSize *prometheus.GaugeVec
	bandRate *prometheus.GaugeVec
}

// NewPromSink registers analysis metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riskband_runs_total",
		Help: "Total number of completed analysis runs",
	}, []string{"dataset", "verdict"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskband_run_duration_seconds",
		Help:    "Wall time of a full analysis run",
		Buckets: prometheus.DefBuckets,
	})
	bandSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "riskband_band_records",
		Help: "Records assigned to each risk band in the latest run",
	}, []string{"dataset", "band"})
	bandRate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "riskband_band_default_rate",
		Help: "Default rate per risk band in the latest run",
	}, []string{"dataset", "band"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bandSize); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bandSize = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bandRate); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bandRate = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, duration: duration, bandSize: bandSize, bandRate: bandRate}, nil
}

// RecordRun updates counters and per-band gauges for a completed run.
func (s *PromSink) RecordRun(sample coremetrics.RunSample) error {
	s.runs.WithLabelValues(sample.Dataset, sample.Verdict).Inc()
	s.duration.Observe(sample.Duration.Seconds())
	for _, b := range sample.Bands {
		s.bandSize.WithLabelValues(sample.Dataset, b.Band).Set(float64(b.Count))
		s.bandRate.WithLabelValues(sample.Dataset, b.Band).Set(b.DefaultRate)
	}
	return nil
}
