// Package traceroute provides an ICMP traceroute engine built on a raw socket.
//
// It exposes a [Client] that discovers the path to a destination by sending
// ICMP echo requests with incrementing TTLs and correlating the ICMP
// time-exceeded, destination-unreachable and echo-reply messages that come
// back. The result is a [Route] with exactly one [Hop] per TTL, ordered by TTL
// regardless of the order in which responses arrived.
//
// Under the hood a single run consists of:
//   - a probe socket: one raw ICMP socket shared by all probes of the run,
//     with sends serialized because the TTL is a socket option
//   - a hop tracker: the only owner of the per-TTL state, guarded by a mutex
//     so that resolutions are idempotent and statuses only move forward
//   - a scheduler: up to Concurrency TTLs in flight, each retried up to
//     Retry.Count times when no response arrives within Timeout
//   - a correlator: a reader goroutine that matches inbound responses to
//     outstanding probes by the ICMP echo identifier and sequence number
//   - an assembler: waits until the destination answered (and all lower TTLs
//     are final), all TTLs are exhausted or RunTimeout elapsed
//
// A run that hits RunTimeout is not an error: the partial route is returned
// with Reached set to false and TimedOut set to true. Only failures that make
// further probing impossible, such as a [SendError], abort a run.
//
// Typical usage:
//
//	client := traceroute.NewClient()
//	opts := traceroute.DefaultOptions()
//	route, err := client.Run(ctx, "8.8.8.8", &opts)
//
// Opening the raw socket requires the NET_RAW capability.
package traceroute
