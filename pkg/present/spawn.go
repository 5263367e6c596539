package present

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/dkoosis/moz60check/pkg/target"
)

// Process is one running presentation child.
type Process interface {
	// Stdin is the write end of the child's standard input.
	Stdin() io.WriteCloser
	// Kill terminates the child immediately.
	Kill() error
	// Wait blocks until the child exits. It is called exactly once.
	Wait() error
}

// Spawner starts a presentation child for a target.
type Spawner interface {
	Spawn(t target.Target) (Process, error)
}

// ExecSpawner launches Argv as a child process. Argv entries may contain the
// placeholders {name}, {id} and {url}.
type ExecSpawner struct {
	Argv   []string
	Stdout io.Writer
	Stderr io.Writer
}

// Expand substitutes the target placeholders in argv.
func Expand(argv []string, t target.Target) []string {
	r := strings.NewReplacer("{name}", t.DisplayName(), "{id}", t.ID, "{url}", t.URL)
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = r.Replace(arg)
	}
	return out
}

// Spawn starts the child with a piped stdin.
func (s ExecSpawner) Spawn(t target.Target) (Process, error) {
	if len(s.Argv) == 0 {
		return nil, errors.New("presenter command not configured")
	}

	argv := Expand(s.Argv, t)
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv comes from config
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	return &execProcess{cmd: cmd, stdin: stdin}, nil
}

type execProcess struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func (p *execProcess) Stdin() io.WriteCloser { return p.stdin }

func (p *execProcess) Kill() error { return p.cmd.Process.Kill() }

func (p *execProcess) Wait() error { return p.cmd.Wait() }
