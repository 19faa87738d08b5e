// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net"
)

// Resolver resolves the destination of a run to an IPv4 address.
//
//go:generate go tool moq -out resolver_moq.go . Resolver
type Resolver interface {
	// Resolve returns the first IPv4 address of the given host.
	// IP literals are returned as is.
	Resolve(ctx context.Context, host string) (net.IP, error)
}

type resolver struct {
	*net.Resolver
}

// NewResolver returns a [Resolver] using the pure Go resolver.
func NewResolver() Resolver {
	return &resolver{
		Resolver: &net.Resolver{
			PreferGo: true,
		},
	}
}

func (r *resolver) Resolve(ctx context.Context, host string) (net.IP, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidDestination)
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidDestination, host)
	}

	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve %s: %w", ErrInvalidDestination, host, err)
	}
	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return nil, fmt.Errorf("%w: no IPv4 address found for %s", ErrInvalidDestination, host)
}
