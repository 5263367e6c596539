package gjs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion_EncodesLikeSystemVersion_When_OutputValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     string
		want    int
		wantErr bool
	}{
		{name: "success: last pre-60 release", out: "gjs 1.53.4\n", want: 15304},
		{name: "success: stable 60 release", out: "gjs 1.54.1\n", want: 15401},
		{name: "success: trailing text ignored", out: "gjs 1.76.0 (debug)\n", want: 17600},
		{name: "error: empty output", out: "", wantErr: true},
		{name: "error: other program", out: "node v20.0.0\n", wantErr: true},
		{name: "error: two-part version", out: "gjs 1.54\n", wantErr: true},
		{name: "error: non-numeric micro", out: "gjs 1.54.x\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseVersion(tc.out)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func fakeGjs(t *testing.T, version string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script gjs")
	}
	bin := filepath.Join(t.TempDir(), "gjs")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'gjs "+version+"'\n"), 0o755))
	return bin
}

func TestRunsMoz60_ComparesAgainstThreshold_When_GjsRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		want    bool
	}{
		{name: "success: pre-60 runtime", version: "1.52.5", want: false},
		{name: "success: threshold release is pre-60", version: "1.53.4", want: false},
		{name: "success: 60 runtime", version: "1.54.0", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, RunsMoz60(context.Background(), fakeGjs(t, tc.version)))
		})
	}
}

func TestRunsMoz60_ReportsFalse_When_GjsMissing(t *testing.T) {
	t.Parallel()

	assert.False(t, RunsMoz60(context.Background(), filepath.Join(t.TempDir(), "absent")))

	_, err := Version(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
