package main

import (
	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/target"
	"github.com/dkoosis/moz60check/pkg/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		all       bool
		noPresent bool
	)

	cmd := &cobra.Command{
		Use:   "watch [extension-uuid | dir]...",
		Short: "Re-check extensions whenever their sources change",
		Long: `Check the named extensions once, then re-check each one after its *.js
files change. A new report for an extension replaces its open presentation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := a.resolveTargets(args, all)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			status := &statusPrinter{w: a.io.out, verbose: true}
			o, _, err := a.newOrchestrator(status, noPresent)
			if err != nil {
				return err
			}
			defer o.Close()

			w, err := watch.New(targets, a.cfg.WatchDebounce, func(t target.Target) {
				o.Go(ctx, t)
			}, a.logger)
			if err != nil {
				return err
			}

			o.CheckAll(ctx, targets)
			a.logger.Info("watching", "targets", len(targets))
			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "watch every installed extension")
	cmd.Flags().BoolVar(&noPresent, "no-present", false, "render reports inline instead of in a presentation process")
	return cmd
}
