// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/telekom/traas/internal/helper"
	"github.com/telekom/traas/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// scheduler is responsible for issuing the probes of a run.
type scheduler struct {
	socket     probeSocket
	tracker    *hopTracker
	otelTracer trace.Tracer
	dst        net.IP
	opts       Options
	// seq is the last probe identifier handed out.
	seq atomic.Uint32
}

// run probes the TTLs 1..MaxHops with at most Concurrency TTLs in flight.
// No TTL beyond a responding destination is issued.
//
// Only a failure to send a probe is returned. It cancels all other TTLs.
func (s *scheduler) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for ttl := 1; ttl <= s.opts.MaxHops; ttl++ {
		if ctx.Err() != nil || s.tracker.beyondDestination(ttl) {
			break
		}
		g.Go(func() error {
			return s.probeHop(ctx, ttl)
		})
	}
	return g.Wait()
}

// probeHop probes a single TTL until it is final, abandoned or the context is done.
func (s *scheduler) probeHop(ctx context.Context, ttl int) error {
	ctx, span := s.otelTracer.Start(ctx, "traceroute.hop", trace.WithAttributes(
		attribute.Stringer("traceroute.destination", s.dst),
		attribute.Int("traceroute.ttl", ttl),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("ttl", ttl)

	// A send failure cancels the hop context so that it is not retried.
	hopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var sendErr error

	attempts := 0
	err := helper.Retry(func(ctx context.Context) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.tracker.beyondDestination(ttl) {
			return nil
		}
		attempts++

		id := s.nextID()
		s.tracker.register(ttl, id, time.Now())
		if err := s.socket.Send(s.dst, ttl, id); err != nil {
			sendErr = err
			cancel()
			return err
		}
		log.DebugContext(ctx, "Sent probe", "probe", id, "attempt", attempts)
		return s.await(ctx, ttl)
	}, s.opts.Retry)(hopCtx)
	span.SetAttributes(attribute.Int("traceroute.attempts", attempts))

	switch {
	case sendErr != nil:
		span.RecordError(sendErr)
		span.SetStatus(codes.Error, "Failed to send probe")
		var se *SendError
		if !errors.As(sendErr, &se) {
			sendErr = &SendError{TTL: ttl, Err: sendErr}
		}
		return sendErr
	case err == nil:
		return nil
	case ctx.Err() != nil:
		// The run is over, the assembler takes care of the pending hop.
		return nil
	case isTimeout(err):
		if s.tracker.markUnreachable(ttl) {
			log.DebugContext(ctx, "No response for ttl, marked unreachable", "attempts", attempts)
			span.SetStatus(codes.Error, "No response")
		}
		return nil
	default:
		span.RecordError(err)
		log.WarnContext(ctx, "Unexpected error while probing ttl", "error", err)
		s.tracker.markUnreachable(ttl)
		return nil
	}
}

// await blocks until the TTL is final, the destination responded at a lower
// TTL, the probe timeout elapsed or the context is done.
func (s *scheduler) await(ctx context.Context, ttl int) error {
	timer := time.NewTimer(s.opts.Timeout)
	defer timer.Stop()

	done := s.tracker.done(ttl)
	reached := s.tracker.reachedSignal()
	for {
		select {
		case <-done:
			return nil
		case <-reached:
			if s.tracker.beyondDestination(ttl) {
				return nil
			}
			// The destination answered at a higher TTL, keep waiting for this one.
			reached = nil
		case <-timer.C:
			return errProbeTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// nextID returns a new probe identifier that is unique within the run.
func (s *scheduler) nextID() probeID {
	return probeID(s.seq.Add(1)) // #nosec G115 // at most maxTTL*(maxRetries+1) probes per run
}
