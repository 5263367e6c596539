package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/jsonl"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := a.resolveTargets(nil, true)
			if err != nil {
				return err
			}

			if asJSON {
				for _, t := range targets {
					if err := jsonl.WriteLine(a.io.out, t); err != nil {
						return err
					}
				}
				return nil
			}

			tw := tabwriter.NewWriter(a.io.out, 0, 4, 2, ' ', 0)
			for _, t := range targets {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.DisplayName(), t.Dir)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per extension")
	return cmd
}
