// Package scan runs moz60tool over every JavaScript file in a directory.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/moz60check/pkg/target"
)

// ErrNoTool is returned when no tool path is configured.
var ErrNoTool = errors.New("moz60tool path not configured")

// Runner executes the tool against one file and returns its stdout.
type Runner interface {
	Run(ctx context.Context, tool, file string) ([]byte, error)
}

// ExecRunner runs the tool as a child process.
type ExecRunner struct{}

// Run executes "<tool> <file>". A non-zero exit status is not an error as
// long as the process started and ctx was not cancelled; moz60tool exits
// non-zero when it finds something, and its stdout is still the result.
func (ExecRunner) Run(ctx context.Context, tool, file string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, tool, file) //nolint:gosec // tool path comes from config
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, nil
		}
		return nil, err
	}
	return out, nil
}

// Scanner invokes the tool once per discovered source file.
type Scanner struct {
	Tool   string
	Jobs   int
	Runner Runner
}

// New creates a Scanner using ExecRunner.
func New(tool string, jobs int) *Scanner {
	return &Scanner{Tool: tool, Jobs: jobs, Runner: ExecRunner{}}
}

// Scan resolves dir to its real path, runs the tool on each *.js file beneath
// it and returns the outputs concatenated in file order. The first failure to
// launch the tool aborts the scan.
func (s *Scanner) Scan(ctx context.Context, dir string) (string, error) {
	if s.Tool == "" {
		return "", ErrNoTool
	}

	root, err := target.ResolveDir(dir)
	if err != nil {
		return "", err
	}

	files, err := ListSources(root)
	if err != nil {
		return "", fmt.Errorf("list sources: %w", err)
	}
	if len(files) == 0 {
		return "", nil
	}

	runner := s.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	jobs := s.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine owns one slot, so no locking is needed.
	outputs := make([][]byte, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, file := range files {
		g.Go(func() error {
			out, err := runner.Run(gctx, s.Tool, file)
			if err != nil {
				return fmt.Errorf("run %s on %s: %w", s.Tool, file, err)
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, out := range outputs {
		b.Write(out)
	}
	return b.String(), nil
}

// ListSources returns every *.js file under root, sorted. Symlinks below the
// root are not followed.
func ListSources(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(path) == ".js" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
