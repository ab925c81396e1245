// Package logging adapts github.com/charmbracelet/log to core.Logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"nurserycore/internal/core"
)

// Prefix tags every line written by New.
const Prefix = "nursery"

// Logger forwards leveled key/value logging to a charm logger.
type Logger struct {
	base *log.Logger
}

var _ core.Logger = (*Logger)(nil)

// New returns a Logger writing to w (stderr when nil) at level, one of
// debug, info, warn or error.
func New(level string, w io.Writer) (*Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}
	base := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           lvl,
		ReportTimestamp: true,
	})
	return &Logger{base: base}, nil
}

// With returns a child logger that adds keyvals to every line.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{base: l.base.With(keyvals...)}
}

// SetFormatter switches between text, JSON and logfmt output.
func (l *Logger) SetFormatter(f log.Formatter) { l.base.SetFormatter(f) }

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }
