// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/api"
	"github.com/telekom/traas/pkg/config"
	"github.com/telekom/traas/pkg/metrics"
)

// newLifecycleTraas returns traas with a fresh metrics registry and the given api
func newLifecycleTraas(t *testing.T, a api.API, modify ...func(*config.Config)) *Traas {
	t.Helper()
	tr := newTestTraas(t, &traceroute.ClientMock{}, modify...)
	tr.metrics = newProviderMock()
	tr.api = a
	return tr
}

func runAsync(ctx context.Context, tr *Traas) <-chan error {
	cErr := make(chan error, 1)
	go func() { cErr <- tr.Run(ctx) }()
	return cErr
}

func awaitRun(t *testing.T, cErr <-chan error) error {
	t.Helper()
	select {
	case err := <-cErr:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

// TestTraas_Run_ContextCancel tests that after a context cancels the Run method
// will return and all started components will be shut down.
func TestTraas_Run_ContextCancel(t *testing.T) {
	a := &api.APIMock{
		RegisterRoutesFunc: func(context.Context, ...api.Route) error { return nil },
		RunFunc: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		ShutdownFunc: func(context.Context) error { return nil },
	}
	tr := newLifecycleTraas(t, a)

	ctx, cancel := context.WithCancel(t.Context())
	cErr := runAsync(ctx, tr)
	require.Eventually(t, func() bool { return len(a.RunCalls()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, awaitRun(t, cErr), ErrFinalShutdown)
	assert.Len(t, a.ShutdownCalls(), 1)
	assert.Len(t, tr.metrics.(*metrics.ProviderMock).ShutdownCalls(), 1)

	require.Len(t, a.RegisterRoutesCalls(), 1)
	var paths []string
	for _, r := range a.RegisterRoutesCalls()[0].Routes {
		paths = append(paths, r.Path)
	}
	assert.ElementsMatch(t, []string{"/start", "/openapi", "/metrics", "/client/*"}, paths)
}

// TestTraas_Run_APIFailure tests that a failing api shuts traas down
func TestTraas_Run_APIFailure(t *testing.T) {
	tests := []struct {
		name string
		api  *api.APIMock
	}{
		{
			name: "serve error",
			api: &api.APIMock{
				RegisterRoutesFunc: func(context.Context, ...api.Route) error { return nil },
				RunFunc:            func(context.Context) error { return &api.ErrServe{Err: errors.New("address in use")} },
				ShutdownFunc:       func(context.Context) error { return nil },
			},
		},
		{
			name: "route registration error",
			api: &api.APIMock{
				RegisterRoutesFunc: func(context.Context, ...api.Route) error { return errors.New("invalid route") },
				ShutdownFunc:       func(context.Context) error { return errors.New("not running") },
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newLifecycleTraas(t, tt.api)
			assert.ErrorIs(t, awaitRun(t, runAsync(t.Context(), tr)), ErrFinalShutdown)
			assert.Len(t, tt.api.ShutdownCalls(), 1)
		})
	}
}

func TestTraas_Run_tracingFailure(t *testing.T) {
	a := &api.APIMock{}
	tr := newLifecycleTraas(t, a)
	pm := newProviderMock()
	pm.InitTracingFunc = func(context.Context) error { return errors.New("no exporter") }
	tr.metrics = pm

	err := tr.Run(t.Context())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFinalShutdown)
	assert.Empty(t, a.RunCalls())
}

func TestTraas_Run_traceFile(t *testing.T) {
	t.Run("opened and closed", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "traces.jsonl")
		a := &api.APIMock{
			RegisterRoutesFunc: func(context.Context, ...api.Route) error { return nil },
			RunFunc: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			ShutdownFunc: func(context.Context) error { return nil },
		}
		tr := newLifecycleTraas(t, a, func(c *config.Config) { c.Traceroute.TraceFile = file })

		ctx, cancel := context.WithCancel(t.Context())
		cErr := runAsync(ctx, tr)
		require.Eventually(t, func() bool { return len(a.RunCalls()) == 1 }, time.Second, 5*time.Millisecond)
		require.NotNil(t, tr.traceLog)
		assert.FileExists(t, file)

		cancel()
		assert.ErrorIs(t, awaitRun(t, cErr), ErrFinalShutdown)
	})

	t.Run("unwritable", func(t *testing.T) {
		a := &api.APIMock{}
		tr := newLifecycleTraas(t, a, func(c *config.Config) {
			c.Traceroute.TraceFile = filepath.Join(t.TempDir(), "missing", "traces.jsonl")
		})
		assert.Error(t, tr.Run(t.Context()))
		assert.Empty(t, a.RunCalls())
	})
}

func TestNew_telemetryDisabled(t *testing.T) {
	cfg := &config.Config{
		Api: api.Config{ListeningAddress: ":0"},
		Telemetry: config.TelemetryConfig{
			Enabled: false,
		},
	}
	cfg.Telemetry.Exporter = "grpc"
	tr := New(cfg, "v1")

	require.NoError(t, tr.metrics.InitTracing(t.Context()))
	assert.NoError(t, tr.metrics.Shutdown(t.Context()))
}
