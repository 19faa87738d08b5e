// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/telekom/traas/internal/logger"
	"golang.org/x/net/http/httpguts"
)

var dnsName = regexp.MustCompile(`^([a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	if c.Name != "" && !isDNSName(c.Name) {
		log.Error("The name of the traas instance must be DNS compliant")
		err = errors.Join(err, ErrInvalidName)
	}

	if vErr := c.Traceroute.Validate(ctx); vErr != nil {
		log.Error("The traceroute configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.Error("The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if vErr := c.Api.Validate(); vErr != nil {
		log.Error("The api configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the traceroute configuration
func (c *TracerouteConfig) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)
	var err error
	if vErr := c.Options.Validate(); vErr != nil {
		log.Error("The traceroute options are invalid", "error", vErr)
		err = errors.Join(err, vErr)
	}
	if c.ClientIPHeader != "" && !httpguts.ValidHeaderFieldName(c.ClientIPHeader) {
		log.Error("The client ip header is not a valid header name", "header", c.ClientIPHeader)
		err = errors.Join(err, ErrInvalidClientIPHeader)
	}
	return err
}

// isDNSName checks if the given string is a valid DNS name
func isDNSName(s string) bool {
	return dnsName.MatchString(s)
}
