package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]log.Level{
		"debug": log.DebugLevel,
		"WARN":  log.WarnLevel,
		"error": log.ErrorLevel,
		"":      log.InfoLevel,
		"loud":  log.InfoLevel,
	} {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Setenv("ILREVERSE_LOG_LEVEL", "debug")
	t.Setenv("ILREVERSE_LOG_PREFIX", "test ")

	var buf bytes.Buffer
	lg := NewLoggerWithWriter(&buf)
	lg.Debug("parsed", "lines", 3)
	assert.Contains(t, buf.String(), "test")
	assert.Contains(t, buf.String(), "lines=3")
	assert.NoError(t, lg.Close())
	assert.True(t, IsDebug())
}

func TestNewLoggerToFile(t *testing.T) {
	t.Setenv("ILREVERSE_LOG_TO_FILE", "1")
	t.Setenv("ILREVERSE_LOG_LEVEL", "info")
	path := filepath.Join(t.TempDir(), "logs", "ilreverse.log")

	lg := NewLogger(path)
	assert.Equal(t, path, lg.Path)
	lg.Info("module loaded", "types", 4)
	require.NoError(t, lg.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "module loaded")
}

func TestNewLoggerStderr(t *testing.T) {
	t.Setenv("ILREVERSE_LOG_TO_FILE", "")
	lg := NewLogger(filepath.Join(t.TempDir(), "unused.log"))
	assert.Empty(t, lg.Path)
	assert.NoError(t, lg.Close())
}
