// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/traas/internal/logger"
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/api"
	"github.com/telekom/traas/pkg/config"
	"github.com/telekom/traas/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = time.Second * 90

// Traas is the traceroute service. It traces the route back to every
// client requesting /start and serves the demo front-end.
type Traas struct {
	// config is the startup configuration
	config *config.Config
	// version is reported in the instance info metric and the openapi document
	version string
	// api serves the http routes
	api api.API
	// client runs the traceroutes
	client traceroute.Client
	// metrics holds the prometheus registry and the tracer provider
	metrics metrics.Provider
	// runMetrics are the metrics of the traceroute runs
	runMetrics runMetrics
	// traceLog is nil if no trace file is configured
	traceLog *traceLog
	tracer   trace.Tracer
	// cErr is used to handle non-recoverable errors of the components
	cErr chan error
	// cDone is used to signal that traas was shut down
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New creates the service from the startup configuration
func New(cfg *config.Config, version string) *Traas {
	telemetry := cfg.Telemetry.Config
	if !cfg.HasTelemetry() {
		telemetry = metrics.Config{Exporter: metrics.NOOP}
	}

	return &Traas{
		config:     cfg,
		version:    version,
		api:        api.New(cfg.Api),
		client:     traceroute.NewClient(),
		metrics:    metrics.New(telemetry, version),
		runMetrics: newRunMetrics(),
		tracer:     otel.Tracer("traas"),
		cErr:       make(chan error, 1),
		cDone:      make(chan struct{}, 1),
	}
}

// Run starts all components and blocks until traas is shut down
func (t *Traas) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	err := t.metrics.InitTracing(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := t.metrics.GetRegistry()
	for _, c := range t.runMetrics.GetCollectors() {
		if err = registry.Register(c); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	if err = metrics.RegisterInstanceInfo(registry, t.config.Name, t.version, t.config.Metadata.Labels()); err != nil {
		return fmt.Errorf("failed to register instance info: %w", err)
	}

	if t.config.HasTraceFile() {
		t.traceLog, err = openTraceLog(t.config.Traceroute.TraceFile)
		if err != nil {
			return err
		}
	}

	go func() {
		t.cErr <- t.startupAPI(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			t.shutdown(ctx)
		case err := <-t.cErr:
			if err != nil {
				log.Error("Non-recoverable error in traas component", "error", err)
				t.shutdown(ctx)
			}
		case <-t.cDone:
			log.InfoContext(ctx, "Traas was shut down")
			return ErrFinalShutdown
		}
	}
}

// startupAPI registers all routes and serves them
func (t *Traas) startupAPI(ctx context.Context) error {
	routes, err := t.routes()
	if err != nil {
		return fmt.Errorf("failed to create routes: %w", err)
	}
	if err = t.api.RegisterRoutes(ctx, routes...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}
	return t.api.Run(ctx)
}

// shutdown shuts down traas and all managed components gracefully.
// It logs the errors of components that fail to shut down.
func (t *Traas) shutdown(ctx context.Context) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	t.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down traas")
		var sErrs ErrShutdown
		sErrs.errAPI = t.api.Shutdown(ctx)
		sErrs.errMetrics = t.metrics.Shutdown(ctx)
		if t.traceLog != nil {
			sErrs.errTraceLog = t.traceLog.Close()
		}

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "error", sErrs)
		}

		// Signal that shutdown is complete
		t.cDone <- struct{}{}
	})
}
