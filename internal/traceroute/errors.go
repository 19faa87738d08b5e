// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidDestination is returned when the destination cannot be resolved
	// to an IPv4 address.
	ErrInvalidDestination = errors.New("invalid destination")

	// errICMPNotAvailable is returned when the raw ICMP socket cannot be opened
	// due to lack of NET_RAW capabilities.
	errICMPNotAvailable = errors.New("no NET_RAW capabilities, ICMP not available")
	// errProbeTimeout is returned when no response for a probe arrived within the probe timeout.
	errProbeTimeout = errors.New("probe timed out")
	// errReceiveTimeout is returned by a probe socket when no packet arrived within the read timeout.
	errReceiveTimeout = errors.New("receive timed out")
)

// SendError is returned when a probe cannot be sent.
// It is fatal for a run since no further probing is possible.
type SendError struct {
	TTL int
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send probe with ttl %d: %v", e.TTL, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// SocketError is returned when receiving from the probe socket failed.
// Receive loops log it and keep reading.
type SocketError struct {
	Err error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("failed to receive from probe socket: %v", e.Err)
}

func (e *SocketError) Unwrap() error {
	return e.Err
}

// isTimeout checks if the error is one of the expected
// timeouts of a traceroute that do not abort a run.
func isTimeout(err error) bool {
	return errors.Is(err, errProbeTimeout) ||
		errors.Is(err, errReceiveTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
