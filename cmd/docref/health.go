package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	httpserver "github.com/fyrsmithlabs/docref/internal/http"
)

func newHealthCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check docrefd server health",
		Long: `Check the health status of a running docrefd.

Examples:
  docref health
  docref health --server http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealth(cmd.OutOrStdout(), global.serverURL)
		},
	}
}

func runHealth(out io.Writer, serverURL string) error {
	var health httpserver.HealthResponse
	resp, err := resty.New().
		SetTimeout(5*time.Second).
		R().
		SetResult(&health).
		Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode(), resp.String())
	}

	fmt.Fprintf(out, "Server Status: %s\n", health.Status)
	fmt.Fprintf(out, "Server URL: %s\n", serverURL)
	return nil
}
