// Package app wires configuration into the running service: dataset
// loading, the analysis engine, run storage, metrics sinks and the HTTP
// API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/creditlab/riskband/api/runs"
	"github.com/creditlab/riskband/config"
	"github.com/creditlab/riskband/core/analysis"
	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/binning"
	"github.com/creditlab/riskband/core/dataset"
	coremetrics "github.com/creditlab/riskband/core/metrics"
	"github.com/creditlab/riskband/infra/logger"
	"github.com/creditlab/riskband/infra/metrics"
	"github.com/creditlab/riskband/internal/eventbus"
)

// Service orchestrates the analysis engine, storage and observers.
type Service struct {
	Engine *analysis.Engine
	Store  store.RunStore
	loader *dataset.Loader
	cfg    *config.Config
	bus    *eventbus.Bus
	sink   coremetrics.Sink
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	loader, err := dataset.NewLoader(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("dataset loader: %w", err)
	}
	binner, err := binning.FromConfig(cfg.Binning)
	if err != nil {
		return nil, fmt.Errorf("binner: %w", err)
	}
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("run store: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	engine, err := analysis.New(binner, cfg.Model, st, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Service{
		Engine: engine,
		Store:  st,
		loader: loader,
		cfg:    cfg,
		bus:    bus,
		sink:   sink,
		log:    logg,
	}, nil
}

// Run executes the configured analysis and blocks until the context is
// cancelled. With an interval configured the dataset is re-analyzed
// periodically; otherwise a single run is performed and the service stays
// up only to serve the API and metrics endpoints.
func (s *Service) Run(ctx context.Context) error {
	// Subscribe before the first run so no sample is missed.
	sub := s.bus.Subscribe()
	go s.forwardRunMetrics(ctx, sub)

	if s.cfg.API.Enabled {
		go func() {
			if err := s.serveAPI(ctx); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if err := s.analyzeOnce(ctx); err != nil {
		return err
	}
	if s.cfg.Dataset.IntervalMinutes <= 0 && !s.cfg.API.Enabled && !s.cfg.Metrics.PrometheusEnabled {
		return nil
	}

	var tick <-chan time.Time
	if s.cfg.Dataset.IntervalMinutes > 0 {
		ticker := time.NewTicker(time.Duration(s.cfg.Dataset.IntervalMinutes) * time.Minute)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if err := s.analyzeOnce(ctx); err != nil {
				s.log.Errorf("scheduled analysis: %v", err)
			}
		}
	}
}

func (s *Service) analyzeOnce(ctx context.Context) error {
	ds, err := s.loader.LoadFile(s.cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if _, err := s.Engine.Analyze(ctx, ds); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}

// forwardRunMetrics drains the bus subscription and forwards completed
// runs to the metrics sink.
func (s *Service) forwardRunMetrics(ctx context.Context, sub <-chan eventbus.Event) {
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			rc, ok := ev.(eventbus.RunCompleted)
			if !ok {
				continue
			}
			if err := s.sink.RecordRun(runSample(rc)); err != nil {
				s.log.Errorf("record run metrics: %v", err)
			}
		}
	}
}

func runSample(rc eventbus.RunCompleted) coremetrics.RunSample {
	sample := coremetrics.RunSample{
		RunID:     rc.Run.ID,
		Dataset:   rc.Run.Summary.Name,
		Verdict:   string(rc.Run.Verdict.Status),
		Records:   rc.Run.Summary.Rows,
		Duration:  rc.Run.Duration,
		Timestamp: rc.Run.StartedAt,
	}
	for _, b := range rc.Run.Bands {
		sample.Bands = append(sample.Bands, coremetrics.BandCount{
			Band:        b.Band.String(),
			Count:       b.Count,
			DefaultRate: b.DefaultRate,
		})
	}
	return sample
}

func (s *Service) serveAPI(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: runs.NewRouter(s.Store, s.cfg.API.Token)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return s.Store.Close()
}
