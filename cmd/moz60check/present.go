package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/present"
	"github.com/dkoosis/moz60check/pkg/target"
)

func newPresentCmd(a *app) *cobra.Command {
	var (
		t    target.Target
		hold bool
	)

	cmd := &cobra.Command{
		Use:   "present",
		Short: "Show a report read from stdin",
		Long: `Read one JSON report from stdin and render it.

This is the default presentation process started by "check". It exits after
rendering unless --hold is set, in which case it stays up until terminated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if t.Name == "" {
				t.Name = t.ID
			}
			return present.Show(cmd.Context(), a.io.in, a.io.out, t, hold)
		},
	}

	cmd.Flags().StringVar(&t.Name, "name", "", "extension display name")
	cmd.Flags().StringVar(&t.ID, "id", "", "extension uuid")
	cmd.Flags().StringVar(&t.URL, "url", "", "extension homepage")
	cmd.Flags().BoolVar(&hold, "hold", false, "stay open until terminated")
	return cmd
}
