// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"path"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/traas/internal/logger"
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/api"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

//go:embed web
var webAssets embed.FS

// routes returns all routes served by traas
func (t *Traas) routes() ([]api.Route, error) {
	assets, err := fs.Sub(webAssets, "web")
	if err != nil {
		return nil, err
	}
	clientPrefix := path.Join("/", t.config.Api.BasePath, "client") + "/"

	return []api.Route{
		{Path: "/start", Method: http.MethodGet, Handler: t.handleStart},
		{Path: "/openapi", Method: http.MethodGet, Handler: t.handleOpenAPI},
		{
			Path: "/metrics", Method: "*",
			Handler: promhttp.HandlerFor(
				t.metrics.GetRegistry(),
				promhttp.HandlerOpts{Registry: t.metrics.GetRegistry()},
			).ServeHTTP,
		},
		{
			Path: "/client/*", Method: http.MethodGet,
			Handler: http.StripPrefix(clientPrefix, http.FileServerFS(assets)).ServeHTTP,
		},
	}, nil
}

// handleStart traces the route back to the requesting client
func (t *Traas) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := t.tracer.Start(r.Context(), "traas.start")
	defer span.End()
	log := logger.FromContext(ctx)

	client, err := clientIP(r, t.config.Traceroute.ClientIPHeader)
	if err != nil {
		log.WarnContext(ctx, "Failed to determine client ip", "error", err)
		span.SetStatus(codes.Error, "invalid client ip")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	span.SetAttributes(attribute.String("traas.client", client))

	opts := t.config.Traceroute.Options
	route, err := t.client.Run(ctx, client, &opts)
	t.runMetrics.Observe(route, err)
	if err != nil {
		log.ErrorContext(ctx, "Traceroute failed", "client", client, "error", err)
		span.SetStatus(codes.Error, "traceroute failed")
		span.RecordError(err)
		status := http.StatusBadGateway
		if errors.Is(err, traceroute.ErrInvalidDestination) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	if t.traceLog != nil {
		if lErr := t.traceLog.Write(client, route); lErr != nil {
			log.ErrorContext(ctx, "Failed to log trace", "error", lErr)
		}
	}

	log.InfoContext(ctx, "Traceroute finished", "client", client, "hops", len(route.Hops), "reached", route.Reached, "timedOut", route.TimedOut)
	writeJSON(w, http.StatusOK, FromRoute(route))
}

// handleOpenAPI serves the OpenAPI document as yaml
func (t *Traas) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	doc, err := t.openAPI()
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to create openapi document", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	b, err := marshalYAML(doc)
	if err != nil {
		log.ErrorContext(r.Context(), "Failed to marshal openapi document", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// clientIP returns the address of the requesting client.
// The configured header takes precedence over the remote address;
// of a comma separated list the first entry is used.
func clientIP(r *http.Request, header string) (string, error) {
	addr := ""
	if header != "" {
		if h := r.Header.Get(header); h != "" {
			addr, _, _ = strings.Cut(h, ",")
			addr = strings.TrimSpace(addr)
		}
	}
	if addr == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "", &ErrInvalidClientIP{Addr: r.RemoteAddr}
		}
		addr = host
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		return "", &ErrInvalidClientIP{Addr: addr}
	}
	return ip.String(), nil
}

// marshalYAML encodes the document as yaml, keeping the field names of its json encoding
func marshalYAML(doc *openapi3.T) ([]byte, error) {
	j, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var v any
	if err = yaml.Unmarshal(j, &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
