package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/orchestrator"
	"github.com/dkoosis/moz60check/pkg/present"
	"github.com/dkoosis/moz60check/pkg/scan"
	"github.com/dkoosis/moz60check/pkg/target"
)

var (
	okColor    = color.New(color.FgGreen)
	errColor   = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	faintColor = color.New(color.Faint)
)

// presenterArgv returns the configured presenter, defaulting to this binary's
// present subcommand.
func (a *app) presenterArgv() ([]string, error) {
	if len(a.cfg.Presenter) > 0 {
		return a.cfg.Presenter, nil
	}
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return []string{self, "present", "--name", "{name}", "--id", "{id}", "--url", "{url}"}, nil
}

// newOrchestrator wires scanner, presenter and status sink. With inline set,
// reports are rendered to stdout instead of in a child process, and the
// returned manager is nil.
func (a *app) newOrchestrator(sink orchestrator.StatusSink, inline bool) (*orchestrator.Orchestrator, *present.Manager, error) {
	scanner := scan.New(a.cfg.Tool, a.cfg.Jobs)
	opts := orchestrator.Options{FailuresAsClean: a.cfg.FailuresAsClean, Logger: a.logger}

	if inline {
		return orchestrator.New(scanner, &inlinePresenter{w: a.io.out}, sink, opts), nil, nil
	}

	argv, err := a.presenterArgv()
	if err != nil {
		return nil, nil, err
	}
	mgr := present.NewManager(present.ExecSpawner{Argv: argv, Stdout: a.io.out, Stderr: a.io.err}, a.logger)
	return orchestrator.New(scanner, mgr, sink, opts), mgr, nil
}

// inlinePresenter renders reports in-process.
type inlinePresenter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *inlinePresenter) Open(t target.Target, report diagnostics.Report) (*present.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return nil, present.Render(p.w, t, report)
}

func (p *inlinePresenter) CloseAll() {}

// statusPrinter writes one line per finished check and counts outcomes.
type statusPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	dirty   int
	failed  int
}

func (p *statusPrinter) SetStatus(t target.Target, s orchestrator.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch s {
	case orchestrator.StatusChecking:
		if p.verbose {
			faintColor.Fprintf(p.w, "… %s\n", t.DisplayName())
		}
	case orchestrator.StatusClean:
		okColor.Fprintf(p.w, "✓ %s\n", t.DisplayName())
	case orchestrator.StatusErrors:
		p.dirty++
		errColor.Fprintf(p.w, "✗ %s\n", t.DisplayName())
	case orchestrator.StatusFailed:
		p.failed++
		warnColor.Fprintf(p.w, "! %s: moz60tool could not run\n", t.DisplayName())
	}
}

func (p *statusPrinter) counts() (dirty, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty, p.failed
}
