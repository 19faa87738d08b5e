// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/traas/internal/logger"
)

//go:generate go tool moq -out api_moq.go . API
type API interface {
	// Run serves the registered routes until the context is done or the server fails.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes registers the given routes below the configured base path.
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server   *http.Server
	router   chi.Router
	tls      TLSConfig
	basePath string
}

const (
	readHeaderTimeout = 5 * time.Second
	// writeTimeout has to cover the run timeout of a traceroute.
	writeTimeout = 2 * time.Minute
)

// Config is the configuration for the data API
type Config struct {
	// ListeningAddress is the address the server listens on, e.g. ":8080".
	ListeningAddress string `yaml:"address" mapstructure:"address"`
	// BasePath is the path prefix of all routes, e.g. "/traas".
	BasePath string    `yaml:"basePath" mapstructure:"basePath"`
	Tls      TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig is the configuration for TLS
type TLSConfig struct {
	// Enabled is a flag to enable or disable TLS
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// CertPath is the path to the certificate file
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
	// KeyPath is the path to the key file
	KeyPath string `yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks if the API configuration is valid
func (a *Config) Validate() (err error) {
	if a.ListeningAddress == "" {
		err = errors.Join(err, ErrMissingAddress)
	}
	if a.BasePath != "" && a.BasePath[0] != '/' {
		err = errors.Join(err, fmt.Errorf("%w: %q", ErrInvalidBasePath, a.BasePath))
	}
	if a.Tls.Enabled {
		if a.Tls.CertPath == "" || a.Tls.KeyPath == "" {
			err = errors.Join(err, ErrMissingTLSFiles)
		}
	}
	return err
}

// New creates a new API serving on the configured address
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{
			Addr:              cfg.ListeningAddress,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
		},
		router:   r,
		tls:      cfg.Tls,
		basePath: cfg.BasePath,
	}
}

// Run serves the API until the context is done or the server fails
func (a *api) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	cErr := make(chan error, 1)
	log.InfoContext(ctx, "Serving API", "addr", a.server.Addr, "tls", a.tls.Enabled)
	go func() {
		var err error
		if a.tls.Enabled {
			err = a.server.ListenAndServeTLS(a.tls.CertPath, a.tls.KeyPath)
		} else {
			err = a.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Failed to serve API", "error", err)
			cErr <- &ErrServe{Err: err}
			return
		}
		cErr <- nil
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed serving API: %w", ctx.Err())
	case err := <-cErr:
		return err
	}
}

// Shutdown gracefully shuts down the API server
func (a *api) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed shutting down API: %w", err)
	}
	return nil
}

// Route is a route of the API
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// RegisterRoutes sets up all endpoint handlers for the given routes
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	a.router.Use(middleware.RequestID)
	a.router.Use(logger.Middleware(ctx))
	a.router.Use(middleware.Recoverer)

	for _, route := range routes {
		p := path.Join("/", a.basePath, route.Path)
		switch route.Method {
		case http.MethodGet:
			a.router.Get(p, route.Handler)
		case http.MethodPost:
			a.router.Post(p, route.Handler)
		case "*":
			a.router.HandleFunc(p, route.Handler)
		default:
			return fmt.Errorf("http method %s for route %s is not supported", route.Method, p)
		}
	}

	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	return nil
}
