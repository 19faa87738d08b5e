// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/telekom/traas/internal/helper"
)

const (
	// maxTTL is the largest TTL an IPv4 packet can carry.
	maxTTL = 255
	// maxRetries bounds the retries per TTL so that probe identifiers stay unique
	// within the 16 bit ICMP sequence number space.
	maxRetries = 10
)

// Options contains the configuration of a traceroute run.
type Options struct {
	// MaxHops is the maximum TTL to probe.
	MaxHops int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Concurrency is the number of TTLs probed at the same time.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
	// Timeout is the time to wait for a response to a single probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Retry configures how often an unanswered TTL is probed again.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
	// RunTimeout is the overall time budget of a run.
	RunTimeout time.Duration `json:"runTimeout" yaml:"runTimeout" mapstructure:"runTimeout"`
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		MaxHops:     30,
		Concurrency: 4,
		Timeout:     time.Second,
		Retry:       helper.RetryConfig{Count: 2},
		RunTimeout:  30 * time.Second,
	}
}

// Validate checks the options for values a run cannot work with.
func (o *Options) Validate() (err error) {
	if o.MaxHops < 1 || o.MaxHops > maxTTL {
		err = errors.Join(err, fmt.Errorf("maxHops must be between 1 and %d, got %d", maxTTL, o.MaxHops))
	}
	if o.Concurrency < 1 {
		err = errors.Join(err, fmt.Errorf("concurrency must be at least 1, got %d", o.Concurrency))
	}
	if o.Timeout <= 0 {
		err = errors.Join(err, fmt.Errorf("timeout must be greater than 0, got %s", o.Timeout))
	}
	if o.Retry.Count < 0 || o.Retry.Count > maxRetries {
		err = errors.Join(err, fmt.Errorf("retry count must be between 0 and %d, got %d", maxRetries, o.Retry.Count))
	}
	if o.Retry.Delay < 0 {
		err = errors.Join(err, fmt.Errorf("retry delay must not be negative, got %s", o.Retry.Delay))
	}
	if o.RunTimeout <= 0 {
		err = errors.Join(err, fmt.Errorf("runTimeout must be greater than 0, got %s", o.RunTimeout))
	}
	return err
}

// HopStatus is the state of a single TTL within a run.
// A status only ever moves from [StatusPending] to one of the final states.
type HopStatus int

const (
	// StatusPending means the TTL is waiting for a response.
	StatusPending HopStatus = iota
	// StatusResponded means a response for the TTL arrived.
	StatusResponded
	// StatusTimedOut means the run ended while the TTL was still waiting.
	StatusTimedOut
	// StatusUnreachable means all probes for the TTL went unanswered
	// or the TTL was never probed.
	StatusUnreachable
)

func (s HopStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResponded:
		return "responded"
	case StatusTimedOut:
		return "timedOut"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

func (s HopStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// final reports whether the status can no longer change.
func (s HopStatus) final() bool {
	return s != StatusPending
}

// Hop is the result of one TTL.
type Hop struct {
	// TTL is the time-to-live the hop was probed with.
	TTL int `json:"ttl" yaml:"ttl"`
	// IP is the address that responded. It is empty if nothing responded.
	IP string `json:"ip" yaml:"ip"`
	// Latency is the round trip time of the first answered probe.
	Latency time.Duration `json:"-" yaml:"-"`
	// Status is the state of the hop.
	Status HopStatus `json:"status" yaml:"status"`
}

func (h Hop) MarshalJSON() ([]byte, error) {
	type alias Hop
	return json.Marshal(&struct {
		Latency string `json:"latency"`
		alias
	}{
		Latency: h.Latency.String(),
		alias:   alias(h),
	})
}

func (h Hop) MarshalYAML() (any, error) {
	return struct {
		TTL     int    `yaml:"ttl"`
		IP      string `yaml:"ip"`
		Latency string `yaml:"latency"`
		Status  string `yaml:"status"`
	}{
		TTL:     h.TTL,
		IP:      h.IP,
		Latency: h.Latency.String(),
		Status:  h.Status.String(),
	}, nil
}

func (h Hop) String() string {
	addr := h.IP
	if addr == "" {
		addr = "*"
	}

	latency := "*"
	if h.Status == StatusResponded {
		latency = h.Latency.String()
	}

	return fmt.Sprintf("%-3d  %-15.15s  %-12s  %s", h.TTL, addr, latency, h.Status)
}

// Route is the result of a single traceroute run.
type Route struct {
	// Destination is the destination as requested.
	Destination string `json:"destination" yaml:"destination"`
	// Addr is the IPv4 address the destination resolved to.
	Addr string `json:"addr" yaml:"addr"`
	// Hops holds one hop per TTL starting at 1 without gaps.
	Hops []Hop `json:"hops" yaml:"hops"`
	// Reached is true if the destination itself responded.
	Reached bool `json:"reached" yaml:"reached"`
	// TimedOut is true if the run timeout elapsed before the run terminated.
	TimedOut bool `json:"timedOut" yaml:"timedOut"`
	// StartedAt is the time the run started.
	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`
	// FinishedAt is the time the route was assembled.
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`
}

// Duration returns how long the run took.
func (r *Route) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Route) String() string {
	var sb strings.Builder
	state := "not reached"
	switch {
	case r.Reached:
		state = "reached"
	case r.TimedOut:
		state = "timed out"
	}
	fmt.Fprintf(&sb, "traceroute to %s (%s), %d hops, %s\n", r.Destination, r.Addr, len(r.Hops), state)
	for _, hop := range r.Hops {
		sb.WriteString(hop.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
