package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setup(t *testing.T) {
	t.Helper()
	orig := bootstrapLog
	bootstrapLog = func(string) {}
	t.Cleanup(func() { bootstrapLog = orig })
	t.Chdir(t.TempDir())
}

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer

	opts, err := parseArgs([]string{"--config", "x.yaml", "lorca"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "x.yaml", opts.configPath)
	assert.Equal(t, "lorca", opts.backend)

	opts, err = parseArgs([]string{"--backend", "browser"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "browser", opts.backend)

	_, err = parseArgs([]string{"webview", "lorca"}, &stderr)
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "deskshell dev")
}

func TestRun_PrintConfig(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--print-config", "lorca"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &out))
	win, ok := out["window"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "lorca", win["backend"])
	assert.Equal(t, "Vue Desktop App", win["title"])
}

func TestRun_UnknownBackend(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"qt4"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "unknown window backend")
}

func TestRun_BadConfig(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [unclosed"), 0o644))
	var stdout, stderr bytes.Buffer

	code := run([]string{"--config", path}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to load config")
}

func TestRun_BadFlag(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run([]string{"--nope"}, &stdout, &stderr))
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
}
