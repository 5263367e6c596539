// Package watch re-checks targets when their JavaScript sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dkoosis/moz60check/pkg/target"
)

// ChangeHandler is called once per target after a burst of changes settles.
type ChangeHandler func(t target.Target)

// Watcher watches the real directories of a set of targets.
type Watcher struct {
	fsw      *fsnotify.Watcher
	roots    map[string]target.Target // resolved root -> target
	debounce time.Duration
	handler  ChangeHandler
	logger   *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// New creates a Watcher over targets. Targets whose directory cannot be
// resolved are skipped with a warning.
func New(targets []target.Target, debounce time.Duration, handler ChangeHandler, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		roots:    make(map[string]target.Target),
		debounce: debounce,
		handler:  handler,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}

	for _, t := range targets {
		root, err := t.RealDir()
		if err != nil {
			logger.Warn("skip watch", "target", t.ID, "error", err)
			continue
		}
		if err := w.addTree(root); err != nil {
			logger.Warn("skip watch", "target", t.ID, "error", err)
			continue
		}
		w.roots[root] = t
	}

	if len(w.roots) == 0 {
		_ = fsw.Close()
		return nil, errors.New("no watchable targets")
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run processes events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	t, ok := w.targetFor(ev.Name)
	if !ok {
		return
	}

	if ev.Has(fsnotify.Create) {
		if isDir(ev.Name) {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Debug("watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}

	if filepath.Ext(ev.Name) != ".js" {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("source changed", "target", t.ID, "path", ev.Name, "op", ev.Op.String())
	w.schedule(t)
}

func (w *Watcher) schedule(t target.Target) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if timer, ok := w.timers[t.ID]; ok {
		timer.Stop()
	}
	w.timers[t.ID] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, t.ID)
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			w.handler(t)
		}
	})
}

// targetFor returns the target whose root is the longest prefix of path.
func (w *Watcher) targetFor(path string) (target.Target, bool) {
	best := ""
	for root := range w.roots {
		if (path == root || strings.HasPrefix(path, root+string(filepath.Separator))) && len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return target.Target{}, false
	}
	return w.roots[best], true
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
	w.mu.Unlock()
	_ = w.fsw.Close()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
