// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/telekom/traas/internal/logger"
)

// maxBodySize bounds the response body read from /start
const maxBodySize = 1 << 20

// Fetch requests the route from a /start url and returns its display state.
// The body is decoded regardless of the status code, since failures carry an error body.
func Fetch(ctx context.Context, client *http.Client, url string) State {
	log := logger.FromContext(ctx)
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create request", "url", url, "error", err)
		return Error{Message: fmt.Sprintf("invalid url %q", url)}
	}

	resp, err := client.Do(req) //nolint:bodyclose // closed below
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch route", "url", url, "error", err)
		return Error{Message: err.Error()}
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			log.ErrorContext(ctx, "Failed to close response body", "error", cErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.ErrorContext(ctx, "Failed to read response body", "url", url, "error", err)
		return Error{Message: err.Error()}
	}

	log.DebugContext(ctx, "Fetched route", "url", url, "status", resp.StatusCode)
	return Decode(body)
}
