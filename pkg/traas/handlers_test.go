// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/config"
)

func TestTraas_handleStart(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		remoteAddr string
		headers    map[string]string
		runErr     error
		wantDst    string
		wantCode   int
		wantBody   string
	}{
		{
			name:       "traces the remote address",
			remoteAddr: "192.0.2.1:40000",
			wantDst:    "192.0.2.1",
			wantCode:   http.StatusOK,
			wantBody: `{"To":"192.0.2.1","Route":[
				{"TTL":1,"IP":"10.0.0.1","Latency":2000000},
				{"TTL":2,"IP":"","Latency":0},
				{"TTL":3,"IP":"192.0.2.1","Latency":12345000}]}`,
		},
		{
			name:       "forwarded header takes precedence",
			header:     "X-Forwarded-For",
			remoteAddr: "10.1.1.1:40000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.1.1.1"},
			wantDst:    "203.0.113.7",
			wantCode:   http.StatusOK,
		},
		{
			name:       "missing header falls back to remote address",
			header:     "X-Real-Ip",
			remoteAddr: "198.51.100.3:1234",
			wantDst:    "198.51.100.3",
			wantCode:   http.StatusOK,
		},
		{
			name:       "invalid client ip",
			header:     "X-Forwarded-For",
			remoteAddr: "10.1.1.1:40000",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			wantCode:   http.StatusBadRequest,
			wantBody:   `{"error":"invalid client ip \"not-an-ip\""}`,
		},
		{
			name:       "untraceable destination",
			remoteAddr: "[2001:db8::1]:40000",
			runErr:     fmt.Errorf("failed to resolve: %w", traceroute.ErrInvalidDestination),
			wantDst:    "2001:db8::1",
			wantCode:   http.StatusBadRequest,
		},
		{
			name:       "run failure",
			remoteAddr: "192.0.2.1:40000",
			runErr:     errors.New("icmp not available"),
			wantDst:    "192.0.2.1",
			wantCode:   http.StatusBadGateway,
			wantBody:   `{"error":"icmp not available"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &traceroute.ClientMock{
				RunFunc: func(_ context.Context, destination string, _ *traceroute.Options) (*traceroute.Route, error) {
					if tt.runErr != nil {
						return nil, tt.runErr
					}
					return testRoute(destination), nil
				},
			}
			tr := newTestTraas(t, client, func(c *config.Config) {
				c.Traceroute.ClientIPHeader = tt.header
			})

			req := httptest.NewRequest(http.MethodGet, "/start", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			tr.handleStart(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}

			if tt.wantDst == "" {
				assert.Empty(t, client.RunCalls())
				return
			}
			require.Len(t, client.RunCalls(), 1)
			call := client.RunCalls()[0]
			assert.Equal(t, tt.wantDst, call.Destination)
			assert.Equal(t, traceroute.DefaultOptions(), *call.Opts)

			if tt.wantCode != http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, body, "error")
				assert.NotContains(t, body, "Route")
				assert.Equal(t, float64(1), counterValue(t, tr.runMetrics, outcomeFailed))
				return
			}
			assert.Equal(t, float64(1), counterValue(t, tr.runMetrics, outcomeReached))
		})
	}
}

func TestTraas_handleStart_traceLog(t *testing.T) {
	file := filepath.Join(t.TempDir(), "traces.jsonl")
	client := &traceroute.ClientMock{
		RunFunc: func(_ context.Context, destination string, _ *traceroute.Options) (*traceroute.Route, error) {
			return testRoute(destination), nil
		},
	}
	tr := newTestTraas(t, client)
	l, err := openTraceLog(file)
	require.NoError(t, err)
	tr.traceLog = l

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/start", http.NoBody)
		req.RemoteAddr = "192.0.2.1:40000"
		rec := httptest.NewRecorder()
		tr.handleStart(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.NoError(t, tr.traceLog.Close())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)

	var entry traceEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "192.0.2.1", entry.Client)
	assert.True(t, entry.Reached)
	assert.Len(t, entry.Route, 3)
}

func counterValue(t *testing.T, m runMetrics, outcome string) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, m.runs.WithLabelValues(outcome).Write(&metric))
	return metric.GetCounter().GetValue()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		value      string
		remoteAddr string
		want       string
		wantErr    bool
	}{
		{name: "remote address", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "ipv6 remote address", remoteAddr: "[2001:db8::1]:1234", want: "2001:db8::1"},
		{name: "header", header: "X-Forwarded-For", value: "203.0.113.7", remoteAddr: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "header list", header: "X-Forwarded-For", value: " 203.0.113.7 ,10.0.0.2", remoteAddr: "10.0.0.1:1", want: "203.0.113.7"},
		{name: "header not configured", value: "203.0.113.7", remoteAddr: "10.0.0.1:1", want: "10.0.0.1"},
		{name: "remote address without port", remoteAddr: "10.0.0.1", wantErr: true},
		{name: "header garbage", header: "X-Forwarded-For", value: "unknown", remoteAddr: "10.0.0.1:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/start", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			if tt.value != "" {
				req.Header.Set("X-Forwarded-For", tt.value)
			}

			got, err := clientIP(req, tt.header)
			if tt.wantErr {
				var ipErr *ErrInvalidClientIP
				assert.ErrorAs(t, err, &ipErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// serve calls the handler of the route registered for the given pattern
func serve(t *testing.T, tr *Traas, pattern, target string) *httptest.ResponseRecorder {
	t.Helper()
	routes, err := tr.routes()
	require.NoError(t, err)
	for _, r := range routes {
		if r.Path == pattern {
			rec := httptest.NewRecorder()
			r.Handler(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return rec
		}
	}
	t.Fatalf("no route registered for %s", pattern)
	return nil
}

func TestTraas_routes_client(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		target   string
		contains string
	}{
		{name: "script", target: "/client/traceroute.js", contains: "#ff0000"},
		{name: "below base path", basePath: "/traas", target: "/traas/client/traceroute.js", contains: "../start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTraas(t, &traceroute.ClientMock{}, func(c *config.Config) {
				c.Api.BasePath = tt.basePath
			})
			rec := serve(t, tr, "/client/*", tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestTraas_routes_metrics(t *testing.T) {
	tr := newTestTraas(t, &traceroute.ClientMock{})
	tr.runMetrics.Observe(testRoute("192.0.2.1"), nil)

	rec := serve(t, tr, "/metrics", "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `traas_runs_total{outcome="reached"} 1`)
	assert.Contains(t, body, "traas_run_duration_seconds_count 1")
	assert.Contains(t, body, "traas_route_hops_sum 3")
	assert.Contains(t, body, "go_goroutines")
}

func TestTraas_handleOpenAPI(t *testing.T) {
	tr := newTestTraas(t, &traceroute.ClientMock{}, func(c *config.Config) {
		c.Api.BasePath = "/traas"
	})

	rec := serve(t, tr, "/openapi", "/traas/openapi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	doc, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(t.Context()))
	assert.Equal(t, "v0.0.0-test", doc.Info.Version)

	item := doc.Paths.Find("/traas/start")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)

	for status, body := range map[int]any{
		http.StatusOK:         FromRoute(testRoute("192.0.2.1")),
		http.StatusBadGateway: ErrorResponse{Error: "boom"},
	} {
		ref := item.Get.Responses.Status(status)
		require.NotNil(t, ref, "status %d", status)
		media := ref.Value.Content.Get("application/json")
		require.NotNil(t, media, "status %d", status)

		b, err := json.Marshal(body)
		require.NoError(t, err)
		var v map[string]any
		require.NoError(t, json.Unmarshal(b, &v))
		assert.NoError(t, media.Schema.Value.VisitJSON(v), "status %d", status)
	}
}
