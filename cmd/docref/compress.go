package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/docref/internal/compression"
)

type compressOptions struct {
	granularity int
	level       int
	aux         string
	auxWeight   float64
	trace       bool
}

func newCompressCmd(global *globalOptions) *cobra.Command {
	opts := &compressOptions{}

	cmd := &cobra.Command{
		Use:   "compress [file]",
		Short: "Compress a file or stdin to its most representative units",
		Long: `Compress text locally using the configured embedding provider.

Examples:
  # Keep half the sentences of a file
  docref compress --granularity 2 --level 5 notes.md

  # Steer selection towards a description, show the trace
  cat doc.txt | docref compress -g 3 -l 7 --aux "deployment steps" --aux-weight 0.4 --trace -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.auxWeight < 0 || opts.auxWeight > 1 {
				return fmt.Errorf("--aux-weight must be between 0 and 1")
			}
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			reg, err := buildServices(global)
			if err != nil {
				return err
			}
			defer reg.Close()

			svc := reg.Compression()
			if svc == nil {
				return fmt.Errorf("compression is disabled in configuration")
			}

			res := svc.Compress(cmd.Context(), compression.Request{
				Content:     content,
				Granularity: opts.granularity,
				Level:       opts.level,
				AuxText:     opts.aux,
				AuxWeight:   opts.auxWeight,
			})
			return printResult(cmd, res, opts.trace)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.granularity, "granularity", "g", 2, "chunking: 1 phrase, 2 sentence, 3 paragraph, 4-10 paragraph groups")
	f.IntVarP(&opts.level, "level", "l", 5, "compression level 1 (keep most) to 10 (keep least)")
	f.StringVar(&opts.aux, "aux", "", "description text blended into scoring")
	f.Float64Var(&opts.auxWeight, "aux-weight", 0, "weight of --aux between 0 and 1")
	f.BoolVar(&opts.trace, "trace", false, "prefix output with the compression trace")

	return cmd
}

func printResult(cmd *cobra.Command, res *compression.Result, withTrace bool) error {
	fmt.Fprint(cmd.OutOrStdout(), res.Text(withTrace))
	fmt.Fprintf(cmd.ErrOrStderr(), "\n[docref] outcome=%s units=%d selected=%d\n", res.Outcome, res.Units, res.Selected)
	if res.Err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[docref] %v\n", res.Err)
	}
	return nil
}
