// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/sys/unix"
)

var _ probeSocket = (*rawSocket)(nil)

// rawSocket is a [probeSocket] on top of a raw ICMP socket.
// It requires NET_RAW capabilities to be created successfully.
type rawSocket struct {
	// conn is the ICMP packet connection used for sending and receiving.
	conn *icmp.PacketConn
	// echoID is the ICMP echo identifier of all probes sent over this socket.
	echoID uint16
	// mu serializes sends since the TTL is a socket option
	// that has to stay untouched until the probe was written.
	mu sync.Mutex
	// buf is the receive buffer. Receive must not be called concurrently.
	buf []byte
}

// newRawSocket opens a raw ICMP socket on all local IPv4 addresses.
//
// Returns [errICMPNotAvailable] if the process lacks the NET_RAW capability.
func newRawSocket(echoID uint16) (probeSocket, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, fmt.Errorf("%w: %w", errICMPNotAvailable, err)
		}
		return nil, fmt.Errorf("failed to create ICMP socket: %w", err)
	}

	return &rawSocket{
		conn:   conn,
		echoID: echoID,
		buf:    make([]byte, mtuSize),
	}, nil
}

// Send writes an ICMP echo request with the given TTL and probe identifier to dst.
func (s *rawSocket) Send(dst net.IP, ttl int, id probeID) error {
	b, err := newEchoRequest(s.echoID, id)
	if err != nil {
		return &SendError{TTL: ttl, Err: fmt.Errorf("failed to marshal echo request: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.conn.IPv4PacketConn().SetTTL(ttl); err != nil {
		return &SendError{TTL: ttl, Err: fmt.Errorf("failed to set ttl: %w", err)}
	}
	if _, err = s.conn.WriteTo(b, &net.IPAddr{IP: dst}); err != nil {
		return &SendError{TTL: ttl, Err: err}
	}
	return nil
}

// Receive reads the next ICMP message from the socket.
func (s *rawSocket) Receive(timeout time.Duration) (icmpPacket, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return icmpPacket{}, &SocketError{Err: fmt.Errorf("failed to set read deadline: %w", err)}
	}

	n, src, err := s.conn.ReadFrom(s.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return icmpPacket{}, errReceiveTimeout
		}
		return icmpPacket{}, &SocketError{Err: err}
	}

	body := make([]byte, n)
	copy(body, s.buf[:n])
	return icmpPacket{
		from:       ipFromAddr(src),
		receivedAt: time.Now(),
		body:       body,
	}, nil
}

// Close closes the underlying ICMP connection.
func (s *rawSocket) Close() error {
	return s.conn.Close()
}
