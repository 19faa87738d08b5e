// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net"
	"sync"
	"time"
)

// probe is a single echo request that is still waiting for a response.
type probe struct {
	ttl    int
	sentAt time.Time
}

// hopState is the tracked state of a single TTL.
type hopState struct {
	hop Hop
	// done is closed once the hop reached a final status.
	done chan struct{}
}

// hopTracker owns the per-TTL state of a single run.
// All methods are safe for concurrent use.
type hopTracker struct {
	mu sync.Mutex
	// dst is the address whose response terminates the run.
	dst     net.IP
	maxHops int
	hops    map[int]*hopState
	// probes holds the outstanding probes by identifier.
	probes map[probeID]probe
	// reached is the lowest TTL the destination responded at, 0 if it did not respond yet.
	reached int
	// reachedCh is closed the first time the destination responds.
	reachedCh  chan struct{}
	finishedCh chan struct{}
	finished   bool
}

func newHopTracker(dst net.IP, maxHops int) *hopTracker {
	return &hopTracker{
		dst:        dst,
		maxHops:    maxHops,
		hops:       make(map[int]*hopState, maxHops),
		probes:     make(map[probeID]probe),
		reachedCh:  make(chan struct{}),
		finishedCh: make(chan struct{}),
	}
}

// state returns the state of the given TTL and creates a pending one if there is none.
// The caller must hold the lock.
func (t *hopTracker) state(ttl int) *hopState {
	s, ok := t.hops[ttl]
	if !ok {
		s = &hopState{
			hop:  Hop{TTL: ttl, Status: StatusPending},
			done: make(chan struct{}),
		}
		t.hops[ttl] = s
	}
	return s
}

// register records an outstanding probe for the given TTL.
// Probes for TTLs that are already final are ignored.
func (t *hopTracker) register(ttl int, id probeID, sentAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state(ttl).hop.Status.final() {
		return
	}
	t.probes[id] = probe{ttl: ttl, sentAt: sentAt}
}

// resolve records the response to the probe with the given identifier.
// It reports whether the response changed the state of a hop. Responses to
// unknown probes or to probes of a final TTL are dropped.
func (t *hopTracker) resolve(id probeID, from net.IP, receivedAt time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.probes[id]
	if !ok {
		return false
	}

	s := t.state(p.ttl)
	if s.hop.Status.final() {
		delete(t.probes, id)
		return false
	}

	s.hop.Status = StatusResponded
	s.hop.IP = from.String()
	s.hop.Latency = max(receivedAt.Sub(p.sentAt), 0)
	t.finalize(p.ttl, s)

	if from.Equal(t.dst) && (t.reached == 0 || p.ttl < t.reached) {
		if t.reached == 0 {
			close(t.reachedCh)
		}
		t.reached = p.ttl
	}
	t.checkFinished()
	return true
}

// markTimedOut sets a pending TTL to [StatusTimedOut].
// It reports whether the status changed.
func (t *hopTracker) markTimedOut(ttl int) bool {
	return t.mark(ttl, StatusTimedOut)
}

// markUnreachable sets a pending TTL to [StatusUnreachable].
// It reports whether the status changed.
func (t *hopTracker) markUnreachable(ttl int) bool {
	return t.mark(ttl, StatusUnreachable)
}

func (t *hopTracker) mark(ttl int, status HopStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(ttl)
	if s.hop.Status.final() {
		return false
	}
	s.hop.Status = status
	t.finalize(ttl, s)
	t.checkFinished()
	return true
}

// expire sets every registered TTL up to limit that is still pending to [StatusTimedOut].
func (t *hopTracker) expire(limit int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ttl := 1; ttl <= limit; ttl++ {
		s, ok := t.hops[ttl]
		if !ok || s.hop.Status.final() {
			continue
		}
		s.hop.Status = StatusTimedOut
		t.finalize(ttl, s)
	}
	t.checkFinished()
}

// finalize drops the outstanding probes of a TTL and wakes up its waiters.
// The caller must hold the lock.
func (t *hopTracker) finalize(ttl int, s *hopState) {
	for id, p := range t.probes {
		if p.ttl == ttl {
			delete(t.probes, id)
		}
	}
	close(s.done)
}

// checkFinished closes the finished channel once the run can terminate:
// the destination responded and all lower TTLs are final, or all TTLs up to
// maxHops are final. The caller must hold the lock.
func (t *hopTracker) checkFinished() {
	if t.finished {
		return
	}

	limit := t.maxHops
	if t.reached > 0 {
		limit = t.reached - 1
	}
	for ttl := 1; ttl <= limit; ttl++ {
		s, ok := t.hops[ttl]
		if !ok || !s.hop.Status.final() {
			return
		}
	}

	t.finished = true
	close(t.finishedCh)
}

// snapshot returns one hop for every TTL from 1 to limit ordered by TTL.
// TTLs that were never probed are reported as [StatusUnreachable].
func (t *hopTracker) snapshot(limit int) []Hop {
	t.mu.Lock()
	defer t.mu.Unlock()

	hops := make([]Hop, 0, limit)
	for ttl := 1; ttl <= limit; ttl++ {
		s, ok := t.hops[ttl]
		if !ok {
			hops = append(hops, Hop{TTL: ttl, Status: StatusUnreachable})
			continue
		}
		hops = append(hops, s.hop)
	}
	return hops
}

// done returns a channel that is closed once the given TTL is final.
func (t *hopTracker) done(ttl int) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state(ttl).done
}

// finishedSignal returns a channel that is closed once the run can terminate.
func (t *hopTracker) finishedSignal() <-chan struct{} {
	return t.finishedCh
}

// reachedSignal returns a channel that is closed once the destination responded.
func (t *hopTracker) reachedSignal() <-chan struct{} {
	return t.reachedCh
}

// reachedTTL returns the lowest TTL the destination responded at or 0.
func (t *hopTracker) reachedTTL() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reached
}

// beyondDestination reports whether the destination already responded at a lower TTL.
func (t *hopTracker) beyondDestination(ttl int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reached > 0 && ttl > t.reached
}

// highestTTL returns the highest TTL that has been probed.
func (t *hopTracker) highestTTL() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	highest := 0
	for ttl := range t.hops {
		highest = max(highest, ttl)
	}
	return highest
}

// isFinished reports whether the run can terminate.
func (t *hopTracker) isFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}
