package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/moz60check/pkg/diagnostics"
	"github.com/dkoosis/moz60check/pkg/orchestrator"
	"github.com/dkoosis/moz60check/pkg/present"
	"github.com/dkoosis/moz60check/pkg/target"
)

// mapScanner returns canned output per directory; a directory mapped to an
// error simulates a tool launch failure.
type mapScanner struct {
	outputs map[string]string
	fails   map[string]error
	block   map[string]chan struct{}
}

func (s *mapScanner) Scan(_ context.Context, dir string) (string, error) {
	if ch, ok := s.block[dir]; ok {
		<-ch
	}
	if err, ok := s.fails[dir]; ok {
		return "", err
	}
	return s.outputs[dir], nil
}

type recordingPresenter struct {
	mu     sync.Mutex
	opened map[string]diagnostics.Report
	fail   error
	closed bool
}

func (p *recordingPresenter) Open(t target.Target, report diagnostics.Report) (*present.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return nil, p.fail
	}
	if p.opened == nil {
		p.opened = map[string]diagnostics.Report{}
	}
	p.opened[t.ID] = report
	return &present.Handle{ID: "h-" + t.ID, Target: t}, nil
}

func (p *recordingPresenter) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

type statusLog struct {
	mu  sync.Mutex
	seq map[string][]orchestrator.Status
}

func (l *statusLog) SetStatus(t target.Target, s orchestrator.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seq == nil {
		l.seq = map[string][]orchestrator.Status{}
	}
	l.seq[t.ID] = append(l.seq[t.ID], s)
}

func (l *statusLog) get(id string) []orchestrator.Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]orchestrator.Status(nil), l.seq[id]...)
}

const dirty = "Scanning /d/a.js\n/d/a.js:1:2: message\n1 errors found.\n"

func TestCheckOne_SetsStatus_When_CheckCompletes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		output          string
		fail            error
		failuresAsClean bool
		wantStatus      orchestrator.Status
		wantOpened      bool
	}{
		{
			name:       "success: diagnostics open a presentation",
			output:     dirty,
			wantStatus: orchestrator.StatusErrors,
			wantOpened: true,
		},
		{
			name:       "success: clean output marks clean",
			output:     "Scanning /d/a.js\n0 errors found.\n",
			wantStatus: orchestrator.StatusClean,
		},
		{
			name:       "error: launch failure marks failed",
			fail:       errors.New("exec: moz60tool: not found"),
			wantStatus: orchestrator.StatusFailed,
		},
		{
			name:            "error: launch failure marks clean when configured",
			fail:            errors.New("exec: moz60tool: not found"),
			failuresAsClean: true,
			wantStatus:      orchestrator.StatusClean,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ext := target.Target{ID: "a@x", Dir: "/d"}
			scanner := &mapScanner{outputs: map[string]string{"/d": tc.output}}
			if tc.fail != nil {
				scanner.fails = map[string]error{"/d": tc.fail}
			}
			pres := &recordingPresenter{}
			status := &statusLog{}

			o := orchestrator.New(scanner, pres, status, orchestrator.Options{FailuresAsClean: tc.failuresAsClean})
			report := o.CheckOne(context.Background(), ext)

			assert.Equal(t, []orchestrator.Status{orchestrator.StatusChecking, tc.wantStatus}, status.get(ext.ID))
			_, opened := pres.opened[ext.ID]
			assert.Equal(t, tc.wantOpened, opened)
			if tc.wantOpened {
				assert.Equal(t, diagnostics.Report{"/d/a.js": {"/d/a.js:1:2: message", "1 errors found."}}, report)
			} else {
				assert.True(t, report.Empty())
			}
		})
	}
}

func TestCheckTarget_ReturnsEmpty_When_ToolFails(t *testing.T) {
	t.Parallel()

	scanner := &mapScanner{fails: map[string]error{"/d": errors.New("boom")}}
	o := orchestrator.New(scanner, nil, nil, orchestrator.Options{})

	report := o.CheckTarget(context.Background(), target.Target{ID: "a@x", Dir: "/d"})
	require.NotNil(t, report)
	assert.True(t, report.Empty())
}

func TestCheckOne_Survives_When_PresentationFails(t *testing.T) {
	t.Parallel()

	scanner := &mapScanner{outputs: map[string]string{"/d": dirty}}
	pres := &recordingPresenter{fail: errors.New("gjs not installed")}
	status := &statusLog{}
	o := orchestrator.New(scanner, pres, status, orchestrator.Options{})

	report := o.CheckOne(context.Background(), target.Target{ID: "a@x", Dir: "/d"})
	assert.False(t, report.Empty())
	assert.Equal(t, orchestrator.StatusErrors, status.get("a@x")[1])
}

func TestCheckAll_CompletesEveryTarget_When_OneFails(t *testing.T) {
	t.Parallel()

	const n = 8
	scanner := &mapScanner{
		outputs: map[string]string{},
		fails:   map[string]error{"/d0": errors.New("spawn failed")},
		block:   map[string]chan struct{}{},
	}
	release := make(chan struct{})
	var targets []target.Target
	for i := 0; i < n; i++ {
		dir := fmt.Sprintf("/d%d", i)
		scanner.outputs[dir] = fmt.Sprintf("Scanning %s/a.js\n%s/a.js:1:1: x\n1 errors found.\n", dir, dir)
		scanner.block[dir] = release
		targets = append(targets, target.Target{ID: fmt.Sprintf("t%d", i), Dir: dir})
	}

	pres := &recordingPresenter{}
	status := &statusLog{}
	o := orchestrator.New(scanner, pres, status, orchestrator.Options{})

	// Every scan blocks until release, so CheckAll returning proves it does
	// not await targets one by one.
	o.CheckAll(context.Background(), targets)
	close(release)
	o.Wait()

	for i, tg := range targets {
		seq := status.get(tg.ID)
		require.Len(t, seq, 2, "target %s", tg.ID)
		if i == 0 {
			assert.Equal(t, orchestrator.StatusFailed, seq[1])
			continue
		}
		assert.Equal(t, orchestrator.StatusErrors, seq[1])
	}
	assert.Len(t, pres.opened, n-1)

	o.Close()
	assert.True(t, pres.closed)
}

func TestGo_DoesNothing_When_Closed(t *testing.T) {
	t.Parallel()

	scanner := &mapScanner{outputs: map[string]string{"/d": dirty}}
	pres := &recordingPresenter{}
	status := &statusLog{}
	o := orchestrator.New(scanner, pres, status, orchestrator.Options{})

	o.Close()
	o.Go(context.Background(), target.Target{ID: "late", Dir: "/d"})
	o.CheckAll(context.Background(), []target.Target{{ID: "later", Dir: "/d"}})
	o.Wait()
	o.Close()

	assert.Empty(t, status.get("late"))
	assert.Empty(t, status.get("later"))
	assert.Empty(t, pres.opened)
}

func TestClose_WaitsForInflight_When_GoRacesClose(t *testing.T) {
	t.Parallel()

	scanner := &mapScanner{outputs: map[string]string{"/d": dirty}}
	pres := &recordingPresenter{}
	o := orchestrator.New(scanner, pres, nil, orchestrator.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Go(context.Background(), target.Target{ID: fmt.Sprintf("t%d", i), Dir: "/d"})
		}()
	}
	o.Close()
	wg.Wait()

	// Whatever started before Close finished before it returned; nothing
	// opens afterwards.
	pres.mu.Lock()
	opened := len(pres.opened)
	pres.mu.Unlock()
	o.Wait()
	pres.mu.Lock()
	defer pres.mu.Unlock()
	assert.Equal(t, opened, len(pres.opened))
	assert.True(t, pres.closed)
}

func TestStatus_String_When_Formatted(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unchecked", orchestrator.StatusUnchecked.String())
	assert.Equal(t, "checking", orchestrator.StatusChecking.String())
	assert.Equal(t, "clean", orchestrator.StatusClean.String())
	assert.Equal(t, "errors", orchestrator.StatusErrors.String())
	assert.Equal(t, "failed", orchestrator.StatusFailed.String())
}
