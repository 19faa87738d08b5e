// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/telekom/traas/internal/traceroute"
)

// traceLog appends completed routes as json lines
type traceLog struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *json.Encoder
}

type traceEntry struct {
	Time     time.Time   `json:"time"`
	Client   string      `json:"client"`
	Addr     string      `json:"addr"`
	Reached  bool        `json:"reached"`
	TimedOut bool        `json:"timedOut"`
	Duration string      `json:"duration"`
	Route    []ResultHop `json:"route"`
}

func openTraceLog(path string) (*traceLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:mnd // file permission
	if err != nil {
		return nil, fmt.Errorf("failed to open trace log: %w", err)
	}
	return newTraceLog(f), nil
}

func newTraceLog(w io.WriteCloser) *traceLog {
	return &traceLog{w: w, enc: json.NewEncoder(w)}
}

// Write appends the route traced for the given client
func (l *traceLog) Write(client string, route *traceroute.Route) error {
	entry := traceEntry{
		Time:     route.FinishedAt.UTC(),
		Client:   client,
		Addr:     route.Addr,
		Reached:  route.Reached,
		TimedOut: route.TimedOut,
		Duration: route.Duration().String(),
		Route:    FromRoute(route).Route,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to write trace log entry: %w", err)
	}
	return nil
}

func (l *traceLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}
