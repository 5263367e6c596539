package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/config"
	"github.com/dkoosis/moz60check/pkg/gjs"
	"github.com/dkoosis/moz60check/pkg/indicator"
	"github.com/dkoosis/moz60check/pkg/target"
)

const menuHelp = "[n] check extension n  [u n] open homepage of n  [a] check all  [i] about moz60tool  [l] redraw  [q] quit"

func newMenuCmd(a *app) *cobra.Command {
	var noPresent bool

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Interactive per-extension check menu",
		Long: `Show the installed extensions with their last check status and start
checks from the keyboard. Quitting terminates every open presentation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ind := indicator.New(nil, func() ([]target.Target, error) {
				return target.Discover(a.cfg.Roots)
			}, func(items []indicator.Item) {
				drawMenu(a.io.out, items)
			})

			o, _, err := a.newOrchestrator(ind, noPresent)
			if err != nil {
				return err
			}
			ind.SetChecker(o)
			defer ind.Destroy()

			if gjs.RunsMoz60(cmd.Context(), a.cfg.Gjs) {
				warnColor.Fprintf(a.io.out, "%s %s\n", indicator.IconFailed, gjs.Notice)
			}
			if err := ind.Open(); err != nil {
				return err
			}
			return a.menuLoop(cmd, ind)
		},
	}

	cmd.Flags().BoolVar(&noPresent, "no-present", false, "render reports inline instead of in a presentation process")
	return cmd
}

func (a *app) menuLoop(cmd *cobra.Command, ind *indicator.Indicator) error {
	ctx := cmd.Context()
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.io.in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	fmt.Fprintln(a.io.out, menuHelp)
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "q", "quit":
			return nil
		case "a", "all":
			ind.ActivateAll(ctx)
		case "i", "about":
			if err := a.open(config.ToolURL); err != nil {
				a.logger.Warn("about", "error", err)
			}
		case "l":
			if err := ind.Open(); err != nil {
				return err
			}
		default:
			if arg, ok := strings.CutPrefix(line, "u "); ok {
				a.openHomepage(ind, strings.TrimSpace(arg))
				continue
			}
			t, ok := menuTarget(ind, line)
			if !ok {
				fmt.Fprintln(a.io.out, menuHelp)
				continue
			}
			ind.Activate(ctx, t.ID)
		}
	}
}

// menuTarget maps a 1-based menu number to its target.
func menuTarget(ind *indicator.Indicator, arg string) (target.Target, bool) {
	targets := ind.Targets()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(targets) {
		return target.Target{}, false
	}
	return targets[n-1], true
}

func (a *app) openHomepage(ind *indicator.Indicator, arg string) {
	t, ok := menuTarget(ind, arg)
	if !ok {
		fmt.Fprintln(a.io.out, menuHelp)
		return
	}
	if t.URL == "" {
		fmt.Fprintf(a.io.out, "%s has no homepage\n", t.DisplayName())
		return
	}
	if err := a.open(t.URL); err != nil {
		a.logger.Warn("open homepage", "target", t.ID, "error", err)
	}
}

func drawMenu(w io.Writer, items []indicator.Item) {
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%3d  %-22s %-9s %s\n", i+1, it.Icon, it.Status, it.Target.DisplayName())
	}
	_, _ = io.WriteString(w, b.String())
}
