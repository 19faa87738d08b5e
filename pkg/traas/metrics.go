// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/traas/internal/traceroute"
)

const (
	outcomeReached    = "reached"
	outcomeNotReached = "not_reached"
	outcomeTimedOut   = "timed_out"
	outcomeFailed     = "failed"
)

// runMetrics defines the metric collectors of the traceroute runs
type runMetrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	hops     prometheus.Histogram
}

// newRunMetrics initializes metric collectors of the traceroute runs
func newRunMetrics() runMetrics {
	return runMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "traas_runs_total",
				Help: "Total number of traceroute runs by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "traas_run_duration_seconds",
				Help:    "Histogram of traceroute run durations in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		hops: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "traas_route_hops",
				Help:    "Histogram of the number of hops of completed routes.",
				Buckets: prometheus.LinearBuckets(1, 2, 16),
			},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *runMetrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.runs,
		m.duration,
		m.hops,
	}
}

// Observe records the outcome of one run
func (m *runMetrics) Observe(route *traceroute.Route, err error) {
	if err != nil || route == nil {
		m.runs.WithLabelValues(outcomeFailed).Inc()
		return
	}

	switch {
	case route.Reached:
		m.runs.WithLabelValues(outcomeReached).Inc()
	case route.TimedOut:
		m.runs.WithLabelValues(outcomeTimedOut).Inc()
	default:
		m.runs.WithLabelValues(outcomeNotReached).Inc()
	}
	m.duration.Observe(route.Duration().Seconds())
	m.hops.Observe(float64(len(route.Hops)))
}
