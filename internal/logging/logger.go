// Package logging builds the charmbracelet logger used across ilreverse.
// Level, prefix and file output come from environment variables.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
	// Path is the log file, or "" when logging to stderr.
	Path string
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// ParseLevel maps a level name to a charm level; unknown names give info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(name) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// NewLoggerWithWriter creates a new logger with the provided writer
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	lg.SetLevel(ParseLevel(os.Getenv("ILREVERSE_LOG_LEVEL")))

	prefix := os.Getenv("ILREVERSE_LOG_PREFIX")
	if prefix == "" {
		prefix = "ilreverse "
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// NewLogger creates a new logger based on environment variables
// ILREVERSE_LOG_LEVEL: debug, info, warn, error (default: info)
// ILREVERSE_LOG_PREFIX: prefix for log messages (default: "ilreverse ")
// ILREVERSE_LOG_TO_FILE: when set to "1", logs to logFile instead of stderr
func NewLogger(logFile string) *LoggerCloser {
	if os.Getenv("ILREVERSE_LOG_TO_FILE") != "1" || logFile == "" {
		return NewLoggerWithWriter(os.Stderr)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return NewLoggerWithWriter(os.Stderr)
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		// If file creation fails, fall back to stderr
		return NewLoggerWithWriter(os.Stderr)
	}
	lc := NewLoggerWithWriter(f)
	lc.Path = logFile
	return lc
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return strings.EqualFold(os.Getenv("ILREVERSE_LOG_LEVEL"), "debug")
}
