// Command moz60check runs moz60tool over installed GNOME Shell extensions and
// shows what has to change for SpiderMonkey 60.
//
// Usage:
//
//	moz60check list                  # installed extensions
//	moz60check check --all           # check everything, open a report per dirty extension
//	moz60check check -f sarif ./ext  # SARIF for one directory
//	moz60check watch --all           # re-check on *.js changes
//	moz60check menu                  # interactive indicator menu
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:], newIO())
	stop()

	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "moz60check: %v\n", err)
		}
		os.Exit(1)
	}
}
