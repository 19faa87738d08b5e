// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/api"
	"github.com/telekom/traas/pkg/metrics"
)

// Metadata holds optional ownership and platform information for the traas instance.
// Exposed via the traas_instance_info Prometheus metric.
type Metadata struct {
	// Team holds team ownership information
	Team TeamMetadata `yaml:"team" mapstructure:"team"`
	// Platform identifies the deployment platform (e.g. k8s-prod-eu, aws-eu-west-1)
	Platform string `yaml:"platform" mapstructure:"platform"`
}

// TeamMetadata holds team name and contact for ownership
type TeamMetadata struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Email string `yaml:"email" mapstructure:"email"`
}

// Labels returns the metadata as instance info labels
func (m Metadata) Labels() map[string]string {
	return map[string]string{
		"team_name":  m.Team.Name,
		"team_email": m.Team.Email,
		"platform":   m.Platform,
	}
}

type Config struct {
	// Name is the DNS name of the traas instance
	Name string `yaml:"name" mapstructure:"name"`
	// Metadata is optional ownership and platform metadata (exposed as traas_instance_info)
	Metadata Metadata `yaml:"metadata" mapstructure:"metadata"`
	// Api is the configuration for the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
	// Traceroute is the configuration of the traceroute runs started via the api
	Traceroute TracerouteConfig `yaml:"traceroute" mapstructure:"traceroute"`
	// Telemetry is the configuration for the telemetry
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// TracerouteConfig holds the options of every run and how the client is identified
type TracerouteConfig struct {
	traceroute.Options `yaml:",inline" mapstructure:",squash"`
	// ClientIPHeader is the request header holding the client address, e.g. X-Forwarded-For.
	// The remote address of the connection is used if empty.
	ClientIPHeader string `yaml:"clientIPHeader" mapstructure:"clientIPHeader"`
	// TraceFile is the path of the file completed routes are appended to as json lines.
	// No file is written if empty.
	TraceFile string `yaml:"traceFile" mapstructure:"traceFile"`
}

// TelemetryConfig enables and configures tracing
type TelemetryConfig struct {
	// Enabled is a flag to enable or disable the OpenTelemetry
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	metrics.Config `yaml:",inline" mapstructure:",squash"`
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasTraceFile returns true if completed routes should be logged to a file
func (c *Config) HasTraceFile() bool {
	return c.Traceroute.TraceFile != ""
}
