// Package browser opens URLs with the desktop's default handler.
package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrNoURL is returned by Open for an empty URL.
var ErrNoURL = errors.New("no url")

// Command returns the opener invocation for url on goos.
func Command(goos, url string) ([]string, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open", url}, nil
	case "darwin":
		return []string{"open", url}, nil
	case "windows":
		return []string{"cmd", "/c", "start", "", url}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Open opens url in the default browser without waiting for it.
func Open(url string) error {
	argv, err := Command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // fixed opener binary
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }() // reap zombie process
	return nil
}
