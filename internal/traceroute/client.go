// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/traas/internal/helper"
	"github.com/telekom/traas/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "traceroute"

var _ Client = (*genericClient)(nil)

// Client is able to run a traceroute to a destination.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Run executes the traceroute to the given destination with the specified options.
	// If the run timeout elapses the partial route is returned with TimedOut set and a nil error.
	// An error is only returned if the run could not happen at all or was aborted.
	Run(ctx context.Context, destination string, opts *Options) (*Route, error)
}

// genericClient assembles routes from a single ICMP probe socket per run.
type genericClient struct {
	resolver Resolver
	// newSocket opens the probe socket of a run.
	newSocket func(echoID uint16) (probeSocket, error)
	// newEchoID returns the ICMP echo identifier of a run.
	newEchoID    func() uint16
	pollInterval time.Duration
}

// NewClient returns a [Client] sending ICMP echo probes over a raw socket.
func NewClient() Client {
	return &genericClient{
		resolver:     NewResolver(),
		newSocket:    newRawSocket,
		newEchoID:    randomEchoID,
		pollInterval: defaultPollInterval,
	}
}

// RunTraceroute runs a single traceroute with the given parameters using a new [Client].
func RunTraceroute(ctx context.Context, destination string, maxHops, concurrency int, perProbeTimeout time.Duration, maxRetries int, overallTimeout time.Duration) (*Route, error) {
	return NewClient().Run(ctx, destination, &Options{
		MaxHops:     maxHops,
		Concurrency: concurrency,
		Timeout:     perProbeTimeout,
		Retry:       helper.RetryConfig{Count: maxRetries},
		RunTimeout:  overallTimeout,
	})
}

func (c *genericClient) Run(ctx context.Context, destination string, opts *Options) (*Route, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "traceroute.run", trace.WithAttributes(
		attribute.String("traceroute.destination", destination),
		attribute.Int("traceroute.max_hops", opts.MaxHops),
		attribute.Int("traceroute.concurrency", opts.Concurrency),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("destination", destination)
	ctx = logger.IntoContext(ctx, log)

	dst, err := c.resolver.Resolve(ctx, destination)
	if err != nil {
		return nil, wrapError(ctx, err, "failed to resolve destination %s", destination)
	}
	span.SetAttributes(attribute.Stringer("traceroute.addr", dst))

	echoID := c.newEchoID()
	socket, err := c.newSocket(echoID)
	if err != nil {
		return nil, wrapError(ctx, err, "failed to open probe socket")
	}

	route := &Route{
		Destination: destination,
		Addr:        dst.String(),
		StartedAt:   time.Now(),
	}
	tracker := newHopTracker(dst, opts.MaxHops)
	log.DebugContext(ctx, "Starting traceroute", "addr", dst, "echoID", echoID)

	runCtx, cancel := context.WithTimeout(ctx, opts.RunTimeout)
	defer cancel()

	corr := &correlator{
		socket:       socket,
		tracker:      tracker,
		echoID:       echoID,
		pollInterval: c.pollInterval,
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		corr.listen(runCtx)
	}()

	sched := &scheduler{
		socket:     socket,
		tracker:    tracker,
		otelTracer: tracer,
		dst:        dst,
		opts:       *opts,
	}
	schedDone := make(chan error, 1)
	go func() {
		schedDone <- sched.run(runCtx)
	}()

	var runErr error
	select {
	case <-tracker.finishedSignal():
		cancel()
		runErr = <-schedDone
	case runErr = <-schedDone:
	case <-runCtx.Done():
		runErr = <-schedDone
	}
	cancel()
	if err := socket.Close(); err != nil {
		log.WarnContext(ctx, "Failed to close probe socket", "error", err)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, wrapError(ctx, ctx.Err(), "traceroute to %s aborted", destination)
	}
	var sendErr *SendError
	if errors.As(runErr, &sendErr) {
		return nil, wrapError(ctx, runErr, "traceroute to %s failed", destination)
	}

	finished := tracker.isFinished()
	reached := tracker.reachedTTL()
	limit := opts.MaxHops
	switch {
	case reached > 0:
		limit = reached
	case !finished:
		limit = tracker.highestTTL()
	}

	tracker.expire(limit)
	route.Hops = tracker.snapshot(limit)
	route.Reached = finished && reached > 0
	route.TimedOut = !finished
	route.FinishedAt = time.Now()

	if route.TimedOut {
		log.InfoContext(ctx, "Traceroute timed out, returning partial route", "hops", len(route.Hops))
		span.SetStatus(codes.Error, "Run timed out")
	}
	span.SetAttributes(
		attribute.Bool("traceroute.reached", route.Reached),
		attribute.Int("traceroute.hops", len(route.Hops)),
	)
	logHops(ctx, route.Hops)
	log.DebugContext(ctx, "Finished traceroute", "reached", route.Reached, "duration", route.Duration())
	return route, nil
}
