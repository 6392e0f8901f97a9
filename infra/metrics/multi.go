package metrics

import coremetrics "github.com/creditlab/riskband/core/metrics"

// MultiSink fans out run samples to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the sample to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(sample coremetrics.RunSample) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(sample); err != nil {
			return err
		}
	}
	return nil
}
