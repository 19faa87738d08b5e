// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDst    = net.ParseIP("9.9.9.9").To4()
	testRouter = net.ParseIP("10.0.0.1").To4()
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestHopTracker_resolve(t *testing.T) {
	tr := newHopTracker(testDst, 5)
	sentAt := time.Now()
	tr.register(1, 1, sentAt)

	assert.True(t, tr.resolve(1, testRouter, sentAt.Add(3*time.Millisecond)))
	assert.True(t, isClosed(tr.done(1)), "done channel should be closed after resolution")

	want := []Hop{{TTL: 1, IP: "10.0.0.1", Latency: 3 * time.Millisecond, Status: StatusResponded}}
	if diff := cmp.Diff(want, tr.snapshot(1)); diff != "" {
		t.Errorf("snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestHopTracker_resolve_idempotent(t *testing.T) {
	tr := newHopTracker(testDst, 5)
	sentAt := time.Now()
	tr.register(3, 10, sentAt)
	tr.register(3, 11, sentAt.Add(time.Second))

	require.True(t, tr.resolve(10, testRouter, sentAt.Add(5*time.Millisecond)))
	before := tr.snapshot(3)

	assert.False(t, tr.resolve(10, net.ParseIP("10.9.9.9"), sentAt.Add(time.Second)), "duplicate response must be dropped")
	assert.False(t, tr.resolve(11, net.ParseIP("10.9.9.9"), sentAt.Add(2*time.Second)), "response to retry of a final ttl must be dropped")
	assert.False(t, tr.resolve(99, testRouter, sentAt), "unknown probe must be dropped")

	if diff := cmp.Diff(before, tr.snapshot(3)); diff != "" {
		t.Errorf("hop changed after duplicate resolution (-before +after):\n%s", diff)
	}
}

func TestHopTracker_mark(t *testing.T) {
	tr := newHopTracker(testDst, 3)
	now := time.Now()
	tr.register(1, 1, now)
	tr.register(2, 2, now)

	assert.True(t, tr.markUnreachable(1))
	assert.False(t, tr.markTimedOut(1), "a final hop must not change")
	assert.False(t, tr.resolve(1, testRouter, now), "probes of a final hop are dropped")

	require.True(t, tr.resolve(2, testRouter, now))
	assert.False(t, tr.markUnreachable(2))
	assert.False(t, tr.markTimedOut(2))

	hops := tr.snapshot(2)
	assert.Equal(t, StatusUnreachable, hops[0].Status)
	assert.Equal(t, StatusResponded, hops[1].Status)
}

func TestHopTracker_snapshot(t *testing.T) {
	tr := newHopTracker(testDst, 10)
	now := time.Now()
	tr.register(4, 1, now)
	tr.register(2, 2, now)
	require.True(t, tr.resolve(1, testRouter, now.Add(time.Millisecond)))

	hops := tr.snapshot(5)
	want := []Hop{
		{TTL: 1, Status: StatusUnreachable},
		{TTL: 2, Status: StatusPending},
		{TTL: 3, Status: StatusUnreachable},
		{TTL: 4, IP: "10.0.0.1", Latency: time.Millisecond, Status: StatusResponded},
		{TTL: 5, Status: StatusUnreachable},
	}
	if diff := cmp.Diff(want, hops); diff != "" {
		t.Errorf("snapshot() mismatch (-want +got):\n%s", diff)
	}

	tr.expire(5)
	assert.Equal(t, StatusTimedOut, tr.snapshot(5)[1].Status)
	assert.Equal(t, StatusResponded, tr.snapshot(5)[3].Status)
}

func TestHopTracker_finished(t *testing.T) {
	t.Run("destination reached after lower ttls are final", func(t *testing.T) {
		tr := newHopTracker(testDst, 30)
		now := time.Now()
		tr.register(1, 1, now)
		tr.register(2, 2, now)
		tr.register(3, 3, now)
		tr.register(4, 4, now)

		require.True(t, tr.resolve(3, testDst, now))
		assert.Equal(t, 3, tr.reachedTTL())
		assert.True(t, isClosed(tr.reachedSignal()))
		assert.False(t, isClosed(tr.finishedSignal()), "lower ttls are still pending")
		assert.True(t, tr.beyondDestination(4))
		assert.False(t, tr.beyondDestination(2))

		require.True(t, tr.resolve(1, testRouter, now))
		assert.False(t, tr.isFinished())
		require.True(t, tr.markUnreachable(2))
		assert.True(t, isClosed(tr.finishedSignal()))
		assert.True(t, tr.isFinished())
	})

	t.Run("lower destination ttl wins", func(t *testing.T) {
		tr := newHopTracker(testDst, 30)
		now := time.Now()
		tr.register(1, 1, now)
		tr.register(5, 5, now)
		tr.register(4, 4, now)

		require.True(t, tr.resolve(5, testDst, now))
		require.True(t, tr.resolve(4, testDst, now))
		assert.Equal(t, 4, tr.reachedTTL())
	})

	t.Run("all ttls exhausted", func(t *testing.T) {
		tr := newHopTracker(testDst, 3)
		now := time.Now()
		for ttl := 1; ttl <= 3; ttl++ {
			tr.register(ttl, probeID(ttl), now)
		}
		require.True(t, tr.markUnreachable(3))
		require.True(t, tr.resolve(1, testRouter, now))
		assert.False(t, tr.isFinished())
		require.True(t, tr.markUnreachable(2))
		assert.True(t, tr.isFinished())
		assert.Zero(t, tr.reachedTTL())
	})
}

func TestHopTracker_highestTTL(t *testing.T) {
	tr := newHopTracker(testDst, 30)
	assert.Zero(t, tr.highestTTL())

	now := time.Now()
	tr.register(2, 1, now)
	tr.register(7, 2, now)
	tr.register(5, 3, now)
	assert.Equal(t, 7, tr.highestTTL())
}

func TestHopTracker_concurrentResolve(t *testing.T) {
	tr := newHopTracker(testDst, 1)
	now := time.Now()
	for id := range probeID(50) {
		tr.register(1, id, now)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		resolved int
	)
	for id := range probeID(50) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.resolve(id, testRouter, now.Add(time.Duration(id)*time.Millisecond)) {
				mu.Lock()
				resolved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, resolved, "exactly one response must resolve the hop")
	assert.Equal(t, StatusResponded, tr.snapshot(1)[0].Status)
	assert.True(t, tr.isFinished())
}
