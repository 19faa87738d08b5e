// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/telekom/traas/internal/logger"
)

// defaultPollInterval is the read timeout of the correlator.
// It bounds how long the correlator takes to notice a canceled run.
const defaultPollInterval = 100 * time.Millisecond

// correlator reads ICMP messages from the probe socket
// and routes them to the tracker.
type correlator struct {
	socket  probeSocket
	tracker *hopTracker
	// echoID is the ICMP echo identifier of the run.
	// Messages carrying a different one belong to other runs or processes.
	echoID       uint16
	pollInterval time.Duration
}

// listen reads from the socket until the context is done or the socket is closed.
func (c *correlator) listen(ctx context.Context) {
	log := logger.FromContext(ctx)
	for {
		if ctx.Err() != nil {
			return
		}

		pkt, err := c.socket.Receive(c.pollInterval)
		if err != nil {
			if errors.Is(err, errReceiveTimeout) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				log.DebugContext(ctx, "Probe socket closed, stopping correlator")
				return
			}
			log.WarnContext(ctx, "Failed to receive ICMP message", "error", err)
			continue
		}

		c.handle(ctx, pkt)
	}
}

// handle matches a single ICMP message to its probe.
// It reports whether the message resolved a hop.
func (c *correlator) handle(ctx context.Context, pkt icmpPacket) bool {
	log := logger.FromContext(ctx).With("from", pkt.from)

	reply, err := parseReply(pkt)
	if err != nil {
		log.DebugContext(ctx, "Ignoring ICMP message", "error", err)
		return false
	}
	if reply.echoID != c.echoID {
		log.DebugContext(ctx, "Ignoring ICMP message of another run", "echoID", reply.echoID)
		return false
	}
	if reply.dst != nil && !reply.dst.Equal(c.tracker.dst) {
		log.DebugContext(ctx, "Ignoring ICMP message for another destination", "destination", reply.dst)
		return false
	}

	if !c.tracker.resolve(reply.id, reply.from, reply.receivedAt) {
		log.DebugContext(ctx, "Dropping response to unknown or finalized probe", "probe", reply.id, "kind", reply.kind)
		return false
	}

	log.DebugContext(ctx, "Resolved probe", "probe", reply.id, "kind", reply.kind)
	return true
}
