// Package main implements the docref CLI.
//
// compress and expand run the pipeline locally against the configured
// embedding provider and document service; health talks to a running
// docrefd.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docref/internal/config"
	"github.com/fyrsmithlabs/docref/internal/logging"
	"github.com/fyrsmithlabs/docref/internal/services"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	serverURL  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "docref",
		Short: "Expand and compress document references",
		Long: `docref expands {name,granularity,level,weight} references in text into the
documents they name, compressing each document to its most representative
parts on request.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/docref/config.yaml)")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "http://localhost:9191", "docrefd server URL")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newCompressCmd(opts))
	root.AddCommand(newExpandCmd(opts))
	root.AddCommand(newHealthCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// buildServices loads configuration and wires the local pipeline.
func buildServices(opts *globalOptions) (services.Registry, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zap.NewNop()
	if opts.verbose {
		lc := logging.FromSettings("debug", "console")
		lc.Output = logging.OutputConfig{Stderr: true}
		l, err := logging.NewLogger(lc, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Underlying()
	}

	return services.Build(cfg, logger, nil)
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		content []byte
		err     error
	)
	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}
	if len(content) == 0 {
		return "", fmt.Errorf("no input")
	}
	return string(content), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docref %s\n", version)
		},
	}
}
