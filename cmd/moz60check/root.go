package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoosis/moz60check/pkg/config"
	"github.com/dkoosis/moz60check/pkg/logging"
	"github.com/dkoosis/moz60check/pkg/target"
)

// errDiagnostics signals a non-zero exit after results were already printed.
var errDiagnostics = errors.New("diagnostics found")

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func newIO() streams {
	return streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// app carries state shared by subcommands.
type app struct {
	io streams

	configPath string
	tool       string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func execute(ctx context.Context, args []string, s streams) error {
	root := newRootCmd(s)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(s streams) *cobra.Command {
	a := &app{io: s}

	root := &cobra.Command{
		Use:           "moz60check",
		Short:         "Check GNOME Shell extensions with moz60tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&a.tool, "tool", "", "moz60tool executable (overrides config and "+config.EnvTool+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: auto, text, json")

	root.AddCommand(
		newListCmd(a),
		newCheckCmd(a),
		newPresentCmd(a),
		newWatchCmd(a),
		newMenuCmd(a),
		newAboutCmd(a),
	)
	return root
}

func (a *app) load() error {
	path, optional := a.configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if a.tool != "" {
		cfg.Tool = a.tool
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(a.io.err, cfg.LogLevel, cfg.LogFormat)
	return nil
}

// resolveTargets maps CLI arguments to targets. An argument naming an
// existing directory is checked directly; anything else is looked up by
// extension uuid under the configured roots.
func (a *app) resolveTargets(args []string, all bool) ([]target.Target, error) {
	if all {
		if len(args) > 0 {
			return nil, errors.New("--all takes no arguments")
		}
		return target.Discover(a.cfg.Roots)
	}
	if len(args) == 0 {
		return nil, errors.New("name at least one extension or directory, or pass --all")
	}

	var installed []target.Target
	var targets []target.Target
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			t, err := target.FromDir(arg)
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
			continue
		}

		if installed == nil {
			found, err := target.Discover(a.cfg.Roots)
			if err != nil {
				return nil, err
			}
			installed = found
		}
		t, ok := target.Find(installed, arg)
		if !ok {
			return nil, errors.New("unknown extension or directory: " + arg)
		}
		targets = append(targets, t)
	}
	return targets, nil
}
