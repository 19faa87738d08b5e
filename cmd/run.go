// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/traas/internal/logger"
	"github.com/telekom/traas/internal/traceroute"
	"github.com/telekom/traas/pkg/config"
	"github.com/telekom/traas/pkg/traas"
)

// runFlags maps the flags of the run command to their config keys
var runFlags = map[string]string{
	"name":               "name",
	"team-name":          "metadata.team.name",
	"team-email":         "metadata.team.email",
	"platform":           "metadata.platform",
	"api-address":        "api.address",
	"api-base-path":      "api.basePath",
	"api-tls-enabled":    "api.tls.enabled",
	"api-tls-cert-path":  "api.tls.certPath",
	"api-tls-key-path":   "api.tls.keyPath",
	"max-hops":           "traceroute.maxHops",
	"concurrency":        "traceroute.concurrency",
	"timeout":            "traceroute.timeout",
	"retry-count":        "traceroute.retry.count",
	"retry-delay":        "traceroute.retry.delay",
	"run-timeout":        "traceroute.runTimeout",
	"client-ip-header":   "traceroute.clientIPHeader",
	"trace-file":         "traceroute.traceFile",
	"telemetry-enabled":  "telemetry.enabled",
	"telemetry-exporter": "telemetry.exporter",
	"telemetry-url":      "telemetry.url",
	"telemetry-token":    "telemetry.token",
	"telemetry-tls":      "telemetry.tls.enabled",
	"telemetry-tls-cert": "telemetry.tls.certPath",
}

// NewCmdRun creates a new run command
func NewCmdRun(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run traas",
		Long:  `Serves the traceroute api and the demo front-end`,
		RunE:  run(version),
	}

	defaults := traceroute.DefaultOptions()
	f := cmd.PersistentFlags()
	f.String("name", "", "DNS name of the traas instance")
	f.String("team-name", "", "name of the team owning the instance")
	f.String("team-email", "", "email of the team owning the instance")
	f.String("platform", "", "platform the instance is deployed on")
	f.String("api-address", ":8080", "api: the address the server is listening on")
	f.String("api-base-path", "", "api: path prefix of all routes, e.g. /traas")
	f.Bool("api-tls-enabled", false, "api: serve via tls")
	f.String("api-tls-cert-path", "", "api: path to the tls certificate")
	f.String("api-tls-key-path", "", "api: path to the tls key")
	f.Int("max-hops", defaults.MaxHops, "traceroute: highest ttl probed")
	f.Int("concurrency", defaults.Concurrency, "traceroute: number of ttls probed at once")
	f.Duration("timeout", defaults.Timeout, "traceroute: time to wait for the response to a probe")
	f.Int("retry-count", defaults.Retry.Count, "traceroute: retries of an unanswered probe")
	f.Duration("retry-delay", defaults.Retry.Delay, "traceroute: initial delay between two retries")
	f.Duration("run-timeout", defaults.RunTimeout, "traceroute: upper bound of a whole run")
	f.String("client-ip-header", "", "traceroute: header holding the client ip, e.g. X-Forwarded-For")
	f.String("trace-file", "", "traceroute: file completed routes are appended to")
	f.Bool("telemetry-enabled", false, "telemetry: export traces")
	f.String("telemetry-exporter", "noop", "telemetry: exporter to use (grpc, http, stdout, noop)")
	f.String("telemetry-url", "", "telemetry: url of the collector")
	f.String("telemetry-token", "", "telemetry: token to authenticate with the collector")
	f.Bool("telemetry-tls", false, "telemetry: connect to the collector via tls")
	f.String("telemetry-tls-cert", "", "telemetry: custom ca certificate of the collector")

	for flag, key := range runFlags {
		cobra.CheckErr(viper.BindPFlag(key, f.Lookup(flag)))
	}

	return cmd
}

// run is the entry point to start traas
func run(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logger.NewLogger()
		ctx = logger.IntoContext(ctx, log)

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		t := traas.New(cfg, version)
		log.InfoContext(ctx, "Running traas", "version", version, "address", cfg.Api.ListeningAddress)
		if err = t.Run(ctx); err != nil {
			if errors.Is(err, traas.ErrFinalShutdown) && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("error while running traas: %w", err)
		}
		return nil
	}
}

// loadConfig reads the startup configuration from viper and validates it
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("error while validating the config: %w", err)
	}
	return cfg, nil
}
