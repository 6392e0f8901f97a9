package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/creditlab/riskband/core/metrics"
)

func sampleRun() coremetrics.RunSample {
	return coremetrics.RunSample{
		RunID:    "r1",
		Dataset:  "apps",
		Verdict:  "validated",
		Records:  100,
		Duration: 250 * time.Millisecond,
		Bands: []coremetrics.BandCount{
			{Band: "Low", Count: 40, DefaultRate: 0.05},
			{Band: "High", Count: 20, DefaultRate: 0.6},
		},
		Timestamp: time.Now(),
	}
}

func TestPromSinkRecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.RecordRun(sampleRun()); err != nil {
		t.Fatalf("record: %v", err)
	}

	if v := testutil.ToFloat64(sink.runs.WithLabelValues("apps", "validated")); v != 1 {
		t.Fatalf("runs counter %v", v)
	}
	if v := testutil.ToFloat64(sink.bandSize.WithLabelValues("apps", "Low")); v != 40 {
		t.Fatalf("band size gauge %v", v)
	}
	if v := testutil.ToFloat64(sink.bandRate.WithLabelValues("apps", "High")); v != 0.6 {
		t.Fatalf("band rate gauge %v", v)
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := NewPromSink(reg); err != nil {
		t.Fatalf("second register should reuse collectors: %v", err)
	}
}

type countingSink struct{ calls int }

func (c *countingSink) RecordRun(coremetrics.RunSample) error {
	c.calls++
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordRun(sampleRun()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("fanout calls %d/%d", a.calls, b.calls)
	}
}
