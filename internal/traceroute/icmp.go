// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	// mtuSize is the maximum size of a received ICMP message.
	mtuSize = 1500
	// protocolICMP is the IANA protocol number of ICMP for IPv4.
	protocolICMP = 1
)

// probeID identifies a single probe within a run.
// It is carried as the sequence number of the ICMP echo request.
type probeID uint16

// probeSocket sends TTL limited probes and receives the ICMP messages
// they trigger.
//
//go:generate go tool moq -out socket_moq.go . probeSocket
type probeSocket interface {
	// Send emits one ICMP echo request with the given TTL to dst.
	Send(dst net.IP, ttl int, id probeID) error
	// Receive blocks until the next ICMP message arrives or the timeout elapses.
	// It returns [errReceiveTimeout] on timeout and a [*SocketError] otherwise.
	Receive(timeout time.Duration) (icmpPacket, error)
	// Close releases the socket. A blocked Receive returns afterwards.
	Close() error
}

// icmpPacket is a raw ICMP message as received from the socket.
type icmpPacket struct {
	// from is the address of the device that sent the message.
	from net.IP
	// receivedAt is the time the message was read from the socket.
	receivedAt time.Time
	// body is the ICMP message without the IP header.
	body []byte
}

// replyKind is the kind of ICMP message received in response to a probe.
type replyKind int

const (
	// replyTimeExceeded is sent by a router that dropped the probe because its TTL expired.
	replyTimeExceeded replyKind = iota
	// replyUnreachable is sent by a device that could not forward the probe.
	replyUnreachable
	// replyEcho is sent by the destination itself.
	replyEcho
)

func (k replyKind) String() string {
	switch k {
	case replyTimeExceeded:
		return "timeExceeded"
	case replyUnreachable:
		return "unreachable"
	case replyEcho:
		return "echoReply"
	default:
		return "unknown"
	}
}

// probeReply is an ICMP message that was matched to the echo request it answers.
type probeReply struct {
	kind replyKind
	// from is the responding address.
	from net.IP
	// echoID is the ICMP echo identifier of the answered request.
	echoID uint16
	// id is the ICMP echo sequence number of the answered request.
	id probeID
	// dst is the destination of the answered request. It is nil for echo replies.
	dst        net.IP
	receivedAt time.Time
}

var errNotAReply = errors.New("not a reply to an echo request")

// parseReply extracts the answered echo request from an ICMP message.
// Messages that do not answer an ICMP echo request return an error.
func parseReply(pkt icmpPacket) (probeReply, error) {
	msg, err := icmp.ParseMessage(protocolICMP, pkt.body)
	if err != nil {
		return probeReply{}, fmt.Errorf("failed to parse ICMP message: %w", err)
	}

	reply := probeReply{from: pkt.from, receivedAt: pkt.receivedAt}
	var quoted []byte
	switch msg.Type {
	case ipv4.ICMPTypeEchoReply:
		echo, ok := msg.Body.(*icmp.Echo)
		if !ok {
			return probeReply{}, fmt.Errorf("unexpected echo reply body %T", msg.Body)
		}
		reply.kind = replyEcho
		reply.echoID = uint16(echo.ID) // #nosec G115 // ID is parsed from 16 bits
		reply.id = probeID(echo.Seq)   // #nosec G115 // Seq is parsed from 16 bits
		return reply, nil
	case ipv4.ICMPTypeTimeExceeded:
		body, ok := msg.Body.(*icmp.TimeExceeded)
		if !ok {
			return probeReply{}, fmt.Errorf("unexpected time exceeded body %T", msg.Body)
		}
		reply.kind = replyTimeExceeded
		quoted = body.Data
	case ipv4.ICMPTypeDestinationUnreachable:
		body, ok := msg.Body.(*icmp.DstUnreach)
		if !ok {
			return probeReply{}, fmt.Errorf("unexpected destination unreachable body %T", msg.Body)
		}
		reply.kind = replyUnreachable
		quoted = body.Data
	default:
		return probeReply{}, fmt.Errorf("%w: ICMP type %v", errNotAReply, msg.Type)
	}

	reply.dst, reply.echoID, reply.id, err = parseQuotedEcho(quoted)
	if err != nil {
		return probeReply{}, err
	}
	return reply, nil
}

// parseQuotedEcho reads the IPv4 header and the first 8 bytes of the original
// datagram that ICMP error messages carry. The datagram must be an ICMP echo request.
func parseQuotedEcho(data []byte) (dst net.IP, echoID uint16, id probeID, err error) {
	if len(data) < ipv4.HeaderLen {
		return nil, 0, 0, fmt.Errorf("quoted datagram too short: %d bytes", len(data))
	}
	if version := data[0] >> 4; version != ipv4.Version {
		return nil, 0, 0, fmt.Errorf("unexpected quoted IP version %d", version)
	}

	hdrLen := int(data[0]&0x0f) * 4
	if hdrLen < ipv4.HeaderLen || len(data) < hdrLen+8 {
		return nil, 0, 0, fmt.Errorf("quoted datagram truncated: header %d bytes, total %d bytes", hdrLen, len(data))
	}
	if data[9] != protocolICMP {
		return nil, 0, 0, fmt.Errorf("%w: quoted protocol %d", errNotAReply, data[9])
	}

	echo := data[hdrLen : hdrLen+8]
	if ipv4.ICMPType(echo[0]) != ipv4.ICMPTypeEcho {
		return nil, 0, 0, fmt.Errorf("%w: quoted ICMP type %d", errNotAReply, echo[0])
	}

	dst = net.IPv4(data[16], data[17], data[18], data[19])
	return dst, binary.BigEndian.Uint16(echo[4:6]), probeID(binary.BigEndian.Uint16(echo[6:8])), nil
}

// newEchoRequest returns the wire format of an ICMP echo request.
func newEchoRequest(echoID uint16, id probeID) ([]byte, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(echoID),
			Seq:  int(id),
			Data: []byte("traas"),
		},
	}
	return msg.Marshal(nil)
}
