package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"total": 7, "days": [
	{"date": "2024-06-03", "count": 3, "level": 2},
	{"date": "2024-06-04", "count": 4, "level": 3}
]}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestRun_SVGToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-input", writeSample(t), "-date", "2024-12-31", "-theme", "ocean"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout.String(), "<svg"))
}

func TestRun_PNGToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.png")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-input", writeSample(t), "-date", "2024-12-31", "-format", "png", "-out", out}, &stdout, &stderr)

	require.NoError(t, err)
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG\r\n\x1a\n")))
	assert.Zero(t, stdout.Len())
}

func TestRun_Preview(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-input", writeSample(t), "-date", "2024-12-31", "-preview"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "7 contributions in the last year")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no source", args: nil},
		{name: "bad format", args: []string{"-format", "gif"}},
		{name: "bad mode", args: []string{"-mode", "dim"}},
		{name: "bad date", args: []string{"-date", "yesterday"}},
		{name: "missing file", args: []string{"-input", "does-not-exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.name != "no source" && tt.name != "missing file" {
				args = append([]string{"-input", writeSample(t)}, args...)
			}
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), args, &stdout, &stderr))
		})
	}
}
