// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	instanceInfoMetricName = "traas_instance_info"
	instanceInfoHelp       = "Ownership metadata and version of this traas instance. Emitted once per instance."
)

// RegisterInstanceInfo registers the traas_instance_info info-style metric on the given registry.
// The gauge is set to 1 with the labels team_name, team_email, platform, version and instance_name.
// Missing metadata keys are exported as empty labels.
func RegisterInstanceInfo(registry *prometheus.Registry, instanceName, version string, metadata map[string]string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: instanceInfoMetricName,
			Help: instanceInfoHelp,
		},
		[]string{"team_name", "team_email", "platform", "version", "instance_name"},
	)
	info.WithLabelValues(metadata["team_name"], metadata["team_email"], metadata["platform"], version, instanceName).Set(1)
	return registry.Register(info)
}
