package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/config"
	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/orchestrator"
	"github.com/dkoosis/moz60check/pkg/sarif"
	"github.com/dkoosis/moz60check/pkg/scan"
	"github.com/dkoosis/moz60check/pkg/target"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		all       bool
		noPresent bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "check [extension-uuid | dir]...",
		Short: "Run moz60tool over extensions",
		Long: `Run moz60tool over every *.js file of the named extensions or directories.

In text format each extension with diagnostics gets a presentation process
(see "present"); --no-present renders the reports inline instead. The json and
sarif formats print machine-readable results and never start presentations.
The exit status is 1 when any diagnostics were found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := a.resolveTargets(args, all)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				return a.checkText(cmd.Context(), targets, noPresent)
			case "json", "sarif":
				return a.checkEncoded(cmd.Context(), targets, format)
			default:
				return fmt.Errorf("invalid format %q: must be text, json or sarif", format)
			}
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "check every installed extension")
	cmd.Flags().BoolVar(&noPresent, "no-present", false, "render reports inline instead of in a presentation process")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, sarif")
	return cmd
}

func (a *app) checkText(ctx context.Context, targets []target.Target, inline bool) error {
	status := &statusPrinter{w: a.io.out, verbose: a.cfg.LogLevel == "debug"}

	o, mgr, err := a.newOrchestrator(status, inline)
	if err != nil {
		return err
	}

	o.CheckAll(ctx, targets)
	o.Wait()
	if mgr != nil {
		closed := make(chan struct{})
		go func() {
			mgr.Wait()
			close(closed)
		}()
		select {
		case <-closed:
		case <-ctx.Done():
			a.logger.Info("terminating presentations", "live", mgr.Len())
		}
	}
	o.Close()

	if dirty, _ := status.counts(); dirty > 0 {
		return errDiagnostics
	}
	return nil
}

// collect runs CheckTarget for every target concurrently.
func (a *app) collect(ctx context.Context, targets []target.Target) []diagnostics.Report {
	o := orchestrator.New(scan.New(a.cfg.Tool, a.cfg.Jobs), nil, nil, orchestrator.Options{Logger: a.logger})
	reports := make([]diagnostics.Report, len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Go(func() {
			reports[i] = o.CheckTarget(ctx, t)
		})
	}
	wg.Wait()
	return reports
}

func (a *app) checkEncoded(ctx context.Context, targets []target.Target, format string) error {
	reports := a.collect(ctx, targets)

	dirty := false
	for _, r := range reports {
		if !r.Empty() {
			dirty = true
		}
	}

	var err error
	if format == "sarif" {
		log := sarif.NewLog()
		for i, t := range targets {
			log.Add(sarif.FromReport(t, reports[i], config.ToolURL))
		}
		err = sarif.Encode(a.io.out, log)
	} else {
		out := make(map[string]diagnostics.Report, len(targets))
		for i, t := range targets {
			out[t.ID] = reports[i]
		}
		enc := json.NewEncoder(a.io.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err = enc.Encode(out)
	}
	if err != nil {
		return err
	}

	if dirty {
		return errDiagnostics
	}
	return nil
}
