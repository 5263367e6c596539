// Package gjs detects whether the installed GNOME JavaScript runtime already
// embeds SpiderMonkey 60.
package gjs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Moz60 is the first gjs release built on SpiderMonkey 60, encoded like
// gjs's System.version (major*10000 + minor*100 + micro).
const Moz60 = 15304

// Notice is shown when the shell already runs SpiderMonkey 60.
const Notice = "GNOME Shell is currently running SpiderMonkey 60.\nSee the moz60tool repository for more information."

// ErrVersion is returned for output that carries no version.
var ErrVersion = errors.New("gjs: no version in output")

// ParseVersion reads the "gjs X.Y.Z" line printed by gjs --version and
// returns it encoded like System.version.
func ParseVersion(out string) (int, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "gjs" {
		return 0, ErrVersion
	}

	parts := strings.SplitN(fields[1], ".", 3)
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrVersion, fields[1])
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || (i > 0 && v > 99) {
			return 0, fmt.Errorf("%w: %q", ErrVersion, fields[1])
		}
		n[i] = v
	}
	return n[0]*10000 + n[1]*100 + n[2], nil
}

// Version runs "<bin> --version" and parses its output.
func Version(ctx context.Context, bin string) (int, error) {
	out, err := exec.CommandContext(ctx, bin, "--version").Output() //nolint:gosec // binary comes from config
	if err != nil {
		return 0, fmt.Errorf("gjs --version: %w", err)
	}
	return ParseVersion(string(out))
}

// RunsMoz60 reports whether gjs at bin is newer than the last pre-60
// release. Any failure to run or parse gjs reports false.
func RunsMoz60(ctx context.Context, bin string) bool {
	v, err := Version(ctx, bin)
	return err == nil && v > Moz60
}
