// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"slices"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol used to export the traces
type Exporter string

const (
	// HTTP is the protocol for exporting traces via otlp/http
	HTTP Exporter = "http"
	// GRPC is the protocol for exporting traces via otlp/grpc
	GRPC Exporter = "grpc"
	// STDOUT writes the traces to stdout
	STDOUT Exporter = "stdout"
	// NOOP discards all traces
	NOOP Exporter = "noop"
)

var exporters = []Exporter{HTTP, GRPC, STDOUT, NOOP}

// String returns the string representation of the exporter
func (e Exporter) String() string {
	return string(e)
}

// Validate returns an error if the exporter is unknown.
// An empty exporter is treated as [NOOP].
func (e Exporter) Validate() error {
	if e == "" || slices.Contains(exporters, e) {
		return nil
	}
	return fmt.Errorf("unsupported exporter %q, expected one of %v", e, exporters)
}

// IsExporting reports whether the exporter sends traces to a collector
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create builds the span exporter for the given configuration
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	switch e {
	case HTTP:
		return newHTTPExporter(ctx, config)
	case GRPC:
		return newGRPCExporter(ctx, config)
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	case NOOP, "":
		return &noopExporter{}, nil
	default:
		return nil, e.Validate()
	}
}

func newHTTPExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	endpoint, err := parseEndpoint(config.Url)
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint.Host)}
	if endpoint.Path != "" && endpoint.Path != "/" {
		opts = append(opts, otlptracehttp.WithURLPath(endpoint.Path))
	}
	if !config.TLS.Enabled {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if headers := authHeaders(config.Token); headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	endpoint, err := parseEndpoint(config.Url)
	if err != nil {
		return nil, err
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint.Host)}
	switch {
	case config.TLS.Enabled && config.TLS.CertPath != "":
		creds, cErr := credentials.NewClientTLSFromFile(config.TLS.CertPath, "")
		if cErr != nil {
			return nil, fmt.Errorf("failed to load tls certificate: %w", cErr)
		}
		opts = append(opts, otlptracegrpc.WithTLSCredentials(creds))
	case !config.TLS.Enabled:
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if headers := authHeaders(config.Token); headers != nil {
		opts = append(opts, otlptracegrpc.WithHeaders(headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// parseEndpoint accepts both "host:port" and full urls
func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("//" + raw)
	}
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid collector url %q", raw)
	}
	return u, nil
}

func authHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

var _ sdktrace.SpanExporter = (*noopExporter)(nil)

type noopExporter struct{}

func (*noopExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (*noopExporter) Shutdown(context.Context) error                            { return nil }
