// Package logger wraps charmbracelet/log with the conversion events the
// pipeline reports (resources, skipped images, citation matches).
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at info level.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Wrap adopts an existing charm logger. A nil logger yields Discard().
func Wrap(l *log.Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return &Logger{Logger: l}
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return NewWithLevel(io.Discard, log.FatalLevel)
}

// ParseLevel maps a config or flag value to a log level.
// The empty string maps to info.
func ParseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// LevelFor resolves the effective level from CLI verbosity flags.
// quiet wins over verbose; neither keeps the configured level.
func LevelFor(configured log.Level, quiet, verbose bool) log.Level {
	switch {
	case quiet:
		return log.ErrorLevel
	case verbose:
		return log.DebugLevel
	default:
		return configured
	}
}

// ResourceAdded logs a file registered for the output directory.
func (l *Logger) ResourceAdded(key, source string, size int) {
	l.Debug("resource added",
		"key", key,
		"source", source,
		"bytes", size)
}

// ResourceCollision logs two sources normalizing to the same output name.
func (l *Logger) ResourceCollision(key, source string) {
	l.Warn("resource name collision, keeping latest",
		"key", key,
		"source", source)
}

// ImageSkipped logs a reference left untouched in the cell source.
func (l *Logger) ImageSkipped(source, reason string) {
	l.Debug("image skipped",
		"source", source,
		"reason", reason)
}

// CitationMatched logs a cite2c key remapped to a bibliography key.
func (l *Logger) CitationMatched(from, to string) {
	l.Debug("citation matched",
		"cite2c", from,
		"bibtex", to)
}

// CitationWithoutURL logs a cite2c entry that can only match by title.
func (l *Logger) CitationWithoutURL(key, title string) {
	l.Debug("citation has no URL",
		"cite2c", key,
		"title", title)
}

// StageDone logs the completion of a pipeline stage.
func (l *Logger) StageDone(stage string, elapsed time.Duration) {
	l.Debug("stage done",
		"stage", stage,
		"elapsed", elapsed.Round(time.Millisecond))
}
