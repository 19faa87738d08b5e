// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestPrometheusMetrics_GetRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := &manager{registry: registry}

	assert.Same(t, registry, m.GetRegistry())
}

func TestNewMetrics(t *testing.T) {
	testMetrics := New(Config{}, "v0.0.0")
	testGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "TEST_GAUGE",
		},
	)

	assert.NoError(t, testMetrics.GetRegistry().Register(testGauge))

	mfs, err := testMetrics.GetRegistry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, mfs, "runtime collectors should be registered")
}

func TestMetrics_InitTracing(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "success - stdout exporter",
			config: Config{Exporter: STDOUT},
		},
		{
			name:   "success - otlp exporter",
			config: Config{Exporter: HTTP, Url: "http://localhost:4318"},
		},
		{
			name:   "success - otlp exporter with token",
			config: Config{Exporter: GRPC, Url: "localhost:4317", Token: "my-super-secret-token"},
		},
		{
			name:   "success - no exporter",
			config: Config{Exporter: NOOP},
		},
		{
			name:    "failure - unsupported exporter",
			config:  Config{Exporter: "unsupported"},
			wantErr: true,
		},
		{
			name:    "failure - missing certificate",
			config:  Config{Exporter: GRPC, Url: "localhost:4317", TLS: TLSConfig{Enabled: true, CertPath: "does/not/exist.pem"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.config, "v0.0.0")
			err := m.InitTracing(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)

			_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
			assert.True(t, ok, "global tracer provider should be the sdk provider")

			assert.NoError(t, m.Shutdown(context.Background()))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "empty", config: Config{}},
		{name: "noop", config: Config{Exporter: NOOP}},
		{name: "stdout without url", config: Config{Exporter: STDOUT}},
		{name: "grpc with url", config: Config{Exporter: GRPC, Url: "collector:4317"}},
		{name: "http without url", config: Config{Exporter: HTTP}, wantErr: true},
		{name: "unknown exporter", config: Config{Exporter: "zipkin"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(t.Context())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{raw: "http://collector:4318/v1/traces", wantHost: "collector:4318", wantPath: "/v1/traces"},
		{raw: "collector:4317", wantHost: "collector:4317"},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := parseEndpoint(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, tt.wantPath, u.Path)
		})
	}
}
