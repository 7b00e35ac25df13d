// Package ulog provides the structured logging used across uthread, vmem,
// and mapreduce: a slog.Logger tagged with the owning component, carried
// as a package-level handle the way each module keeps its own logger.
package ulog

import (
	"log/slog"
	"os"
)

// Logger is a component-tagged structured logger.
type Logger struct {
	info  *slog.Logger
	err   *slog.Logger
	level *slog.LevelVar
}

// New builds a Logger for the given component name, logging to stderr as
// text at Info level by default.
func New(component string) *Logger {
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})
	base := slog.New(handler).With("component", component)
	return &Logger{info: base, err: base, level: lv}
}

// SetLevel adjusts the minimum level logged, e.g. for quieter test output.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

func (l *Logger) Info(msg string, args ...any) {
	l.info.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.info.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.err.Error(msg, args...)
}
