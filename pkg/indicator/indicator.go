// Package indicator holds the per-target menu state that used to live on the
// panel button: the target list, an icon per target and the actions that
// start checks.
package indicator

import (
	"context"
	"sync"

	"github.com/dkoosis/moz60check/pkg/orchestrator"
	"github.com/dkoosis/moz60check/pkg/target"
)

// Icon names, matching the symbolic icons the shell menu used.
const (
	IconQuestion = "dialog-question"
	IconRefresh  = "view-refresh-symbolic"
	IconError    = "dialog-error"
	IconOK       = "emblem-ok-symbolic"
	IconFailed   = "dialog-warning"
)

// IconFor maps a check status to its icon.
func IconFor(s orchestrator.Status) string {
	switch s {
	case orchestrator.StatusChecking:
		return IconRefresh
	case orchestrator.StatusErrors:
		return IconError
	case orchestrator.StatusClean:
		return IconOK
	case orchestrator.StatusFailed:
		return IconFailed
	default:
		return IconQuestion
	}
}

// Item is one menu row.
type Item struct {
	Target target.Target
	Status orchestrator.Status
	Icon   string
}

// RenderFunc draws the menu. It is called with a fresh snapshot after every
// change, possibly from several goroutines; calls are serialized.
type RenderFunc func(items []Item)

// Checker is the part of the orchestrator the indicator drives.
type Checker interface {
	Go(ctx context.Context, t target.Target)
	CheckAll(ctx context.Context, targets []target.Target)
	Close()
}

// Indicator is the menu model. Populate runs once, on first Open.
type Indicator struct {
	checker Checker
	list    func() ([]target.Target, error)
	render  RenderFunc

	populate sync.Once
	popErr   error

	mu      sync.Mutex
	targets []target.Target
	status  map[string]orchestrator.Status

	renderMu sync.Mutex
}

// New creates an Indicator. list supplies the targets when the menu is first
// opened; render may be nil.
func New(checker Checker, list func() ([]target.Target, error), render RenderFunc) *Indicator {
	if render == nil {
		render = func([]Item) {}
	}
	return &Indicator{
		checker: checker,
		list:    list,
		render:  render,
		status:  make(map[string]orchestrator.Status),
	}
}

// SetChecker attaches the checker. The orchestrator needs the indicator as its
// status sink, so the two are wired after construction.
func (in *Indicator) SetChecker(c Checker) {
	in.checker = c
}

// Open populates the menu the first time it is called and renders it.
func (in *Indicator) Open() error {
	in.populate.Do(func() {
		targets, err := in.list()
		if err != nil {
			in.popErr = err
			return
		}
		in.mu.Lock()
		in.targets = targets
		in.mu.Unlock()
	})
	if in.popErr != nil {
		return in.popErr
	}
	in.redraw()
	return nil
}

// Items returns the current menu rows.
func (in *Indicator) Items() []Item {
	in.mu.Lock()
	defer in.mu.Unlock()

	items := make([]Item, len(in.targets))
	for i, t := range in.targets {
		s := in.status[t.ID]
		items[i] = Item{Target: t, Status: s, Icon: IconFor(s)}
	}
	return items
}

// Targets returns the populated target list.
func (in *Indicator) Targets() []target.Target {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]target.Target(nil), in.targets...)
}

// Activate starts a check of the target with the given ID. It reports false
// if no such target is listed.
func (in *Indicator) Activate(ctx context.Context, id string) bool {
	t, ok := target.Find(in.Targets(), id)
	if !ok {
		return false
	}
	in.checker.Go(ctx, t)
	return true
}

// ActivateAll starts a check of every listed target.
func (in *Indicator) ActivateAll(ctx context.Context) {
	in.checker.CheckAll(ctx, in.Targets())
}

// SetStatus records s for t and redraws. It implements
// orchestrator.StatusSink.
func (in *Indicator) SetStatus(t target.Target, s orchestrator.Status) {
	in.mu.Lock()
	in.status[t.ID] = s
	in.mu.Unlock()
	in.redraw()
}

// Destroy terminates every live presentation and clears the menu.
func (in *Indicator) Destroy() {
	if in.checker != nil {
		in.checker.Close()
	}
	in.mu.Lock()
	in.status = make(map[string]orchestrator.Status)
	in.mu.Unlock()
}

func (in *Indicator) redraw() {
	items := in.Items()
	in.renderMu.Lock()
	defer in.renderMu.Unlock()
	in.render(items)
}
