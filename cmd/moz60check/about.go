package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/browser"
	"github.com/dkoosis/moz60check/pkg/config"
	"github.com/dkoosis/moz60check/pkg/gjs"
)

// openURL is replaced in tests.
var openURL = browser.Open

func newAboutCmd(a *app) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "about",
		Short: "Open the moz60tool project page",
		Long: `Open the moz60tool project page in the default browser. When the installed
gjs already runs SpiderMonkey 60 a notice is printed first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if gjs.RunsMoz60(cmd.Context(), a.cfg.Gjs) {
				warnColor.Fprintln(a.io.out, gjs.Notice)
			}
			if printOnly {
				_, err := fmt.Fprintln(a.io.out, config.ToolURL)
				return err
			}
			return a.open(config.ToolURL)
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the URL instead of opening it")
	return cmd
}

func (a *app) open(url string) error {
	if err := openURL(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
