// Package orchestrator drives moz60tool checks for targets and opens a
// presentation for each target that has diagnostics.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/present"
	"github.com/dkoosis/moz60check/pkg/target"
)

// Status is the per-target state shown to the user.
type Status int

const (
	// StatusUnchecked means no check has run yet.
	StatusUnchecked Status = iota
	// StatusChecking means a check is in flight.
	StatusChecking
	// StatusClean means the last check found nothing.
	StatusClean
	// StatusErrors means the last check found diagnostics.
	StatusErrors
	// StatusFailed means the tool could not be run.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusClean:
		return "clean"
	case StatusErrors:
		return "errors"
	case StatusFailed:
		return "failed"
	default:
		return "unchecked"
	}
}

// Scanner produces raw tool output for a directory.
type Scanner interface {
	Scan(ctx context.Context, dir string) (string, error)
}

// Presenter opens a presentation for a report.
type Presenter interface {
	Open(t target.Target, report diagnostics.Report) (*present.Handle, error)
	CloseAll()
}

// StatusSink receives status changes. It may be called from several
// goroutines at once.
type StatusSink interface {
	SetStatus(t target.Target, s Status)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(t target.Target, s Status)

// SetStatus calls f.
func (f StatusFunc) SetStatus(t target.Target, s Status) { f(t, s) }

// Options configures an Orchestrator.
type Options struct {
	// FailuresAsClean reports a target whose check could not run as clean
	// instead of failed.
	FailuresAsClean bool
	Logger          *slog.Logger
}

// Orchestrator runs checks and owns the live presentations.
type Orchestrator struct {
	scanner   Scanner
	presenter Presenter
	status    StatusSink
	opts      Options
	logger    *slog.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// New creates an Orchestrator. status may be nil.
func New(scanner Scanner, presenter Presenter, status StatusSink, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if status == nil {
		status = StatusFunc(func(target.Target, Status) {})
	}
	return &Orchestrator{
		scanner:   scanner,
		presenter: presenter,
		status:    status,
		opts:      opts,
		logger:    logger,
	}
}

// CheckTarget runs the tool over t and parses its output. A failure to run the
// tool is logged and yields an empty report.
func (o *Orchestrator) CheckTarget(ctx context.Context, t target.Target) diagnostics.Report {
	report, _ := o.check(ctx, t)
	return report
}

func (o *Orchestrator) check(ctx context.Context, t target.Target) (diagnostics.Report, bool) {
	out, err := o.scanner.Scan(ctx, t.Dir)
	if err != nil {
		o.logger.Error("moz60tool failed", "target", t.ID, "dir", t.Dir, "error", err)
		return diagnostics.Report{}, false
	}
	return diagnostics.Parse(out), true
}

// CheckOne checks t and opens a presentation when diagnostics were found.
// It returns the report.
func (o *Orchestrator) CheckOne(ctx context.Context, t target.Target) diagnostics.Report {
	o.logger.Info("checking", "target", t.ID)
	o.status.SetStatus(t, StatusChecking)

	report, ok := o.check(ctx, t)

	switch {
	case !report.Empty():
		o.status.SetStatus(t, StatusErrors)
		o.logger.Info("diagnostics found", "target", t.ID, "files", len(report), "lines", report.Count())
		o.OpenPresentation(t, report)
	case !ok && !o.opts.FailuresAsClean:
		o.status.SetStatus(t, StatusFailed)
	default:
		o.status.SetStatus(t, StatusClean)
	}

	return report
}

// CheckAll starts CheckOne for every target and returns without waiting.
// Use Wait to block until they finish.
func (o *Orchestrator) CheckAll(ctx context.Context, targets []target.Target) {
	o.logger.Info("checking all", "targets", len(targets))
	for _, t := range targets {
		o.Go(ctx, t)
	}
}

// Go runs CheckOne for t in the background, tracked by Wait. It does nothing
// once Close has been called.
func (o *Orchestrator) Go(ctx context.Context, t target.Target) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.logger.Debug("check skipped after close", "target", t.ID)
		return
	}
	o.inflight.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.inflight.Done()
		o.CheckOne(ctx, t)
	}()
}

// Wait blocks until every background check has finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// OpenPresentation replaces the presentation for t with one showing report.
// Launch failures are logged by the presenter and not returned.
func (o *Orchestrator) OpenPresentation(t target.Target, report diagnostics.Report) {
	if o.presenter == nil {
		return
	}
	if _, err := o.presenter.Open(t, report); err != nil {
		o.logger.Warn("presentation unavailable", "target", t.ID, "error", err)
	}
}

// Close stops accepting background checks, waits for in-flight ones and
// terminates every live presentation. It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.inflight.Wait()
	if o.presenter != nil {
		o.presenter.CloseAll()
	}
}
