// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"encoding/json"

	"github.com/telekom/traas/pkg/traas"
)

// response mirrors the /start body with every field optional,
// so that missing fields can be told apart from zero values
type response struct {
	To    *string `json:"To"`
	Route *[]hop  `json:"Route"`
	Error *string `json:"error"`
}

type hop struct {
	TTL     *int    `json:"TTL"`
	IP      *string `json:"IP"`
	Latency *int64  `json:"Latency"`
}

// Decode maps a /start response body to its display state
func Decode(body []byte) State {
	raw := string(body)
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Error{Message: MsgParse, Raw: raw}
	}

	if resp.Route == nil {
		if resp.Error != nil && *resp.Error != "" {
			return Error{Message: *resp.Error, Raw: raw}
		}
		return Error{Message: MsgNoRoute, Raw: raw}
	}

	res := traas.Result{Route: make([]traas.ResultHop, 0, len(*resp.Route))}
	if resp.To != nil {
		res.To = *resp.To
	}
	for _, h := range *resp.Route {
		if h.TTL == nil {
			return Error{Message: MsgMalformedHop, Raw: raw}
		}
		rh := traas.ResultHop{TTL: *h.TTL}
		if h.IP != nil {
			rh.IP = *h.IP
		}
		if h.Latency != nil {
			rh.Latency = *h.Latency
		}
		res.Route = append(res.Route, rh)
	}
	return Rendered{Result: res}
}
