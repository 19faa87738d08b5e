// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/api"
	"github.com/telekom/traas/pkg/config"
	"github.com/telekom/traas/pkg/metrics"
	"go.opentelemetry.io/otel/trace/noop"
)

var testStart = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

// testRoute returns a three hop route to dst with an unresponsive second hop
func testRoute(dst string) *traceroute.Route {
	return &traceroute.Route{
		Destination: dst,
		Addr:        dst,
		Hops: []traceroute.Hop{
			{TTL: 1, IP: "10.0.0.1", Latency: 2 * time.Millisecond, Status: traceroute.StatusResponded},
			{TTL: 2, Status: traceroute.StatusUnreachable},
			{TTL: 3, IP: dst, Latency: 12345 * time.Microsecond, Status: traceroute.StatusResponded},
		},
		Reached:    true,
		StartedAt:  testStart,
		FinishedAt: testStart.Add(150 * time.Millisecond),
	}
}

// newTestTraas returns traas with a mocked api and traceroute client
func newTestTraas(t *testing.T, client traceroute.Client, modify ...func(*config.Config)) *Traas {
	t.Helper()
	cfg := &config.Config{
		Name: "traas.example.com",
		Api:  api.Config{ListeningAddress: ":0"},
		Traceroute: config.TracerouteConfig{
			Options: traceroute.DefaultOptions(),
		},
	}
	for _, m := range modify {
		m(cfg)
	}

	tr := New(cfg, "v0.0.0-test")
	tr.client = client
	tr.tracer = noop.NewTracerProvider().Tracer("test")
	for _, c := range tr.runMetrics.GetCollectors() {
		require.NoError(t, tr.metrics.GetRegistry().Register(c))
	}
	return tr
}

func newProviderMock() *metrics.ProviderMock {
	registry := metrics.New(metrics.Config{Exporter: metrics.NOOP}, "test").GetRegistry()
	return &metrics.ProviderMock{
		GetRegistryFunc: func() *prometheus.Registry { return registry },
		InitTracingFunc: func(context.Context) error { return nil },
		ShutdownFunc:    func(context.Context) error { return nil },
	}
}
