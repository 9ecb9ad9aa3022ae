package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Out: &buf})
	defer log.Close()

	l := log.WithComponent("locator")
	l.Info().Str("source", "devserver").Msg("frontend resolved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "locator", entry["component"])
	assert.Equal(t, "devserver", entry["source"])
	assert.Equal(t, "frontend resolved", entry["message"])
	assert.Empty(t, log.FilePath())
}

func TestNew_FileOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Path: dir, Out: &buf})

	log.Info().Msg("written to file")
	require.NoError(t, log.Close())

	assert.Equal(t, filepath.Join(dir, logFileName), log.FilePath())
	data, err := os.ReadFile(log.FilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, buf.String(), "written to file")
}

func TestPositiveOr(t *testing.T) {
	assert.Equal(t, 10, positiveOr(0, 10))
	assert.Equal(t, 10, positiveOr(-3, 10))
	assert.Equal(t, 7, positiveOr(7, 10))
}
