// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/telekom/traas/internal/traceroute"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// NewCmdTrace creates a new trace command
func NewCmdTrace() *cobra.Command {
	return newCmdTrace(traceroute.NewClient())
}

func newCmdTrace(client traceroute.Client) *cobra.Command {
	opts := traceroute.DefaultOptions()
	var output string

	cmd := &cobra.Command{
		Use:   "trace <host>",
		Short: "Trace the route to a host",
		Long:  `Runs a single traceroute to the given host and prints the route`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unsupported output format %q", output)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			route, err := client.Run(ctx, args[0], &opts)
			if err != nil {
				return fmt.Errorf("traceroute to %s failed: %w", args[0], err)
			}
			return printRoute(cmd.OutOrStdout(), route, output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", outputText, "output format (text, json, yaml)")
	f.IntVar(&opts.MaxHops, "max-hops", opts.MaxHops, "highest ttl probed")
	f.IntVar(&opts.Concurrency, "concurrency", opts.Concurrency, "number of ttls probed at once")
	f.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "time to wait for the response to a probe")
	f.IntVar(&opts.Retry.Count, "retry-count", opts.Retry.Count, "retries of an unanswered probe")
	f.DurationVar(&opts.Retry.Delay, "retry-delay", opts.Retry.Delay, "initial delay between two retries")
	f.DurationVar(&opts.RunTimeout, "run-timeout", opts.RunTimeout, "upper bound of the whole run")

	return cmd
}

func printRoute(w io.Writer, route *traceroute.Route, output string) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(route)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(route)
	default:
		_, err := fmt.Fprint(w, route.String())
		return err
	}
}
