// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package display turns the body of a /start response into a display state
// and renders that state into a description of what to show.
package display

import "github.com/telekom/traas/pkg/traas"

const (
	// MsgParse is shown if the response is not valid json
	MsgParse = "Could not parse response"
	// MsgNoRoute is shown if the response is json but carries no route
	MsgNoRoute = "Response has no route"
	// MsgMalformedHop is shown if a hop of the route lacks its ttl
	MsgMalformedHop = "Response has a malformed hop"
)

// State is one of [Loading], [Rendered] or [Error]
type State interface {
	isState()
}

// Loading is the state while the route is being traced
type Loading struct{}

// Rendered holds a successfully decoded route
type Rendered struct {
	Result traas.Result
}

// Error holds a message to show instead of the route.
// Raw is the response body the message refers to, if any.
type Error struct {
	Message string
	Raw     string
}

func (Loading) isState()  {}
func (Rendered) isState() {}
func (Error) isState()    {}
