// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/telekom/traas/pkg/traas"
)

// ErrorColor is the text color of error views
const ErrorColor = "#ff0000"

// View describes what to show for a [State]
type View struct {
	// Title is the heading of the view
	Title string
	// Items are the lines of the route list, one per hop
	Items []string
	// Color is the text color of the title, empty for the default color
	Color string
	// Raw is the response body shown below an error
	Raw string
	// Loading is true while the route is being traced
	Loading bool
}

// Render returns the view of the given state
func Render(s State) View {
	switch s := s.(type) {
	case Rendered:
		v := View{Title: "Route to " + s.Result.To, Items: make([]string, 0, len(s.Result.Route))}
		for _, h := range s.Result.Route {
			v.Items = append(v.Items, FormatHop(h))
		}
		return v
	case Error:
		return View{Title: s.Message, Color: ErrorColor, Raw: s.Raw}
	default:
		return View{Title: "Tracing the route...", Loading: true}
	}
}

// FormatHop formats a hop as "<TTL> - <IP> - <latency>ms" with the
// latency in milliseconds rounded to two decimals
func FormatHop(h traas.ResultHop) string {
	ip := h.IP
	if ip == "" {
		ip = "*"
	}
	ms := float64(h.Latency) / float64(time.Millisecond)
	return fmt.Sprintf("%d - %s - %.2fms", h.TTL, ip, ms)
}

// String renders the view as plain text
func (v View) String() string {
	var sb strings.Builder
	sb.WriteString(v.Title)
	sb.WriteByte('\n')
	for i, item := range v.Items {
		fmt.Fprintf(&sb, "%3d. %s\n", i+1, item)
	}
	if v.Raw != "" {
		sb.WriteString(v.Raw)
		if !strings.HasSuffix(v.Raw, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
