// Package present hands diagnostic reports to presentation processes and keeps
// at most one of them alive per target.
package present

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/jsonl"
	"github.com/dkoosis/moz60check/pkg/target"
)

// Handle is a live presentation process.
type Handle struct {
	ID     string
	Target target.Target

	proc Process
	done chan struct{}
}

// Done is closed once the process has exited and the handle is unregistered.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Manager owns the live-handle registry.
type Manager struct {
	spawner Spawner
	logger  *slog.Logger

	mu   sync.Mutex
	live map[string]*Handle
	wg   sync.WaitGroup
}

// NewManager creates a Manager that starts children with spawner.
func NewManager(spawner Spawner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		spawner: spawner,
		logger:  logger,
		live:    make(map[string]*Handle),
	}
}

// Open replaces any live presentation for t with a new one showing report.
// The previous process is killed before the new one is spawned and
// registered. The report is written to the child's stdin as a single JSON
// line, after which stdin is closed; write failures are ignored.
func (m *Manager) Open(t target.Target, report diagnostics.Report) (*Handle, error) {
	payload, err := jsonl.Marshal(report)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if old, ok := m.live[t.ID]; ok {
		delete(m.live, t.ID)
		if err := old.proc.Kill(); err != nil {
			m.logger.Debug("kill superseded presentation", "target", t.ID, "handle", old.ID, "error", err)
		}
	}

	proc, err := m.spawner.Spawn(t)
	if err != nil {
		m.mu.Unlock()
		m.logger.Error("launch presentation", "target", t.ID, "error", err)
		return nil, fmt.Errorf("launch presentation for %s: %w", t.ID, err)
	}

	h := &Handle{
		ID:     uuid.New().String(),
		Target: t,
		proc:   proc,
		done:   make(chan struct{}),
	}
	m.live[t.ID] = h
	m.wg.Add(2)
	m.mu.Unlock()

	go m.reap(h)
	go m.deliver(h, payload)

	m.logger.Debug("presentation opened", "target", t.ID, "handle", h.ID)
	return h, nil
}

func (m *Manager) deliver(h *Handle, payload []byte) {
	defer m.wg.Done()

	stdin := h.proc.Stdin()
	if _, err := stdin.Write(payload); err != nil {
		m.logger.Debug("write report to presentation", "target", h.Target.ID, "error", err)
	}
	_ = stdin.Close()
}

// reap waits for the child and unregisters it, unless a newer handle has
// already taken its place.
func (m *Manager) reap(h *Handle) {
	defer m.wg.Done()

	if err := h.proc.Wait(); err != nil {
		m.logger.Debug("presentation exited", "target", h.Target.ID, "handle", h.ID, "error", err)
	}

	m.mu.Lock()
	if cur, ok := m.live[h.Target.ID]; ok && cur == h {
		delete(m.live, h.Target.ID)
	}
	m.mu.Unlock()

	close(h.done)
}

// Live returns the registered handle for id.
func (m *Manager) Live(id string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.live[id]
	return h, ok
}

// Len returns the number of live presentations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// CloseAll kills every live presentation and waits for their watchers.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	for id, h := range m.live {
		if err := h.proc.Kill(); err != nil {
			m.logger.Debug("kill presentation", "target", id, "error", err)
		}
		delete(m.live, id)
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Wait blocks until every presentation opened so far has exited.
func (m *Manager) Wait() {
	m.wg.Wait()
}
