package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ParsesFile_When_Present(t *testing.T) {
	t.Setenv(EnvTool, "")

	path := writeConfig(t, `
tool: /opt/moz60tool/moz60tool
roots:
  - /srv/extensions
gjs: /opt/gnome/bin/gjs
jobs: 4
presenter: ["xterm", "-e", "moz60check", "present", "--id", "{id}"]
failures_as_clean: true
log_level: debug
log_format: json
watch_debounce: 2s
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "/opt/moz60tool/moz60tool", cfg.Tool)
	assert.Equal(t, []string{"/srv/extensions"}, cfg.Roots)
	assert.Equal(t, "/opt/gnome/bin/gjs", cfg.Gjs)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, "{id}", cfg.Presenter[5])
	assert.True(t, cfg.FailuresAsClean)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
}

func TestLoad_UsesDefaults_When_OptionalFileMissing(t *testing.T) {
	t.Setenv(EnvTool, "/usr/local/bin/moz60tool")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/moz60tool", cfg.Tool)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, "gjs", cfg.Gjs)
	assert.Contains(t, cfg.Roots, "/usr/share/gnome-shell/extensions")
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
}

func TestLoad_ReturnsError_When_Invalid(t *testing.T) {
	t.Setenv(EnvTool, "")

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "error: required file missing",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") },
		},
		{
			name: "error: malformed yaml",
			path: func(t *testing.T) string { return writeConfig(t, "roots: [unterminated\n") },
		},
		{
			name: "error: negative jobs",
			path: func(t *testing.T) string { return writeConfig(t, "jobs: -1\n") },
		},
		{
			name: "error: unknown log format",
			path: func(t *testing.T) string { return writeConfig(t, "log_format: xml\n") },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.path(t), false)
			assert.Error(t, err)
		})
	}
}

func TestExpandHome_ReplacesTilde_When_Prefixed(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, "bin", "moz60tool"), expandHome("~/bin/moz60tool"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "", expandHome(""))
}
