// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/telekom/traas/pkg/display"
)

// NewCmdShow creates a new show command
func NewCmdShow() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the route traced by a traas instance",
		Long:  `Requests /start of a traas instance and renders the route back to this machine`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := &http.Client{Timeout: timeout}
			state := display.Fetch(cmd.Context(), client, url)

			v := display.Render(state)
			if _, err := fmt.Fprint(cmd.OutOrStdout(), v.String()); err != nil {
				return err
			}
			if e, ok := state.(display.Error); ok {
				return errors.New(e.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/start", "url of the /start endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "timeout of the request")

	return cmd
}
