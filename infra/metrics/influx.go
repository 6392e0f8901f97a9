package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/creditlab/riskband/infra/logger"

	coremetrics "github.com/creditlab/riskband/core/metrics"
)

// InfluxSink writes run samples to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run as one summary point plus one point per band.
func (s *InfluxSink) RecordRun(sample coremetrics.RunSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p := write.NewPointWithMeasurement("analysis_run").
		AddTag("dataset", sample.Dataset).
		AddTag("verdict", sample.Verdict).
		AddField("run_id", sample.RunID).
		AddField("records", sample.Records).
		AddField("duration_ms", round3(float64(sample.Duration)/float64(time.Millisecond))).
		SetTime(sample.Timestamp)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, b := range sample.Bands {
		bp := write.NewPointWithMeasurement("risk_band").
			AddTag("dataset", sample.Dataset).
			AddTag("band", b.Band).
			AddField("records", b.Count).
			AddField("default_rate", round3(b.DefaultRate)).
			SetTime(sample.Timestamp)
		if err := s.writeAPI.WritePoint(ctx, bp); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
