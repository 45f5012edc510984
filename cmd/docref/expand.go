package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExpandCmd(global *globalOptions) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "expand [file]",
		Short: "Replace document references in a file or stdin",
		Long: `Resolve every {name}, {name,g}, {name,g,l} or {name,g,l,w} reference and
splice the (optionally compressed) document in its place.

Examples:
  echo "Follow {runbook,3,5}." | docref expand -
  docref expand --trace prompt.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			reg, err := buildServices(global)
			if err != nil {
				return err
			}
			defer reg.Close()

			exp := *reg.Expander()
			exp.EmitTrace = trace

			out, expansions := exp.Expand(cmd.Context(), text)
			fmt.Fprint(cmd.OutOrStdout(), out)

			for _, x := range expansions {
				switch {
				case !x.Resolved:
					fmt.Fprintf(cmd.ErrOrStderr(), "[docref] %s: unresolved: %v\n", x.Reference.Name, x.Err)
				case x.Outcome != "":
					fmt.Fprintf(cmd.ErrOrStderr(), "[docref] %s: %s\n", x.Reference.Name, x.Outcome)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "prefix compressed documents with their trace")
	return cmd
}
