// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import "github.com/telekom/traas/internal/traceroute"

// Result is the body of a successful /start response
type Result struct {
	// To is the traced destination
	To string `json:"To" yaml:"To"`
	// Route holds one entry per ttl, ordered by ttl
	Route []ResultHop `json:"Route" yaml:"Route"`
}

// ResultHop is a single hop of a [Result]
type ResultHop struct {
	TTL int `json:"TTL" yaml:"TTL"`
	// IP is empty if the hop did not respond
	IP string `json:"IP" yaml:"IP"`
	// Latency is the round trip time in nanoseconds
	Latency int64 `json:"Latency" yaml:"Latency"`
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error string `json:"error" yaml:"error"`
}

// FromRoute converts a route into its wire representation.
// Route is never nil, so an empty route encodes as an empty list.
func FromRoute(route *traceroute.Route) Result {
	res := Result{Route: []ResultHop{}}
	if route == nil {
		return res
	}
	res.To = route.Destination
	for _, hop := range route.Hops {
		rh := ResultHop{TTL: hop.TTL, IP: hop.IP}
		if hop.Status == traceroute.StatusResponded {
			rh.Latency = hop.Latency.Nanoseconds()
		}
		res.Route = append(res.Route, rh)
	}
	return res
}
