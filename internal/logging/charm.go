package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Options configures New.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // text, json, logfmt
	Timestamp bool
}

// CharmLogger adapts *log.Logger to Logger. The context is accepted for
// interface parity; charmbracelet/log does not read it.
type CharmLogger struct {
	l *log.Logger
}

// New builds a logger writing to w, tagged with a fresh session id so the
// lines of one run can be grouped.
func New(w io.Writer, opts Options) (*CharmLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	formatter, err := ParseFormatter(opts.Format)
	if err != nil {
		return nil, err
	}
	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: opts.Timestamp,
		Prefix:          "tada",
	})
	return &CharmLogger{l: l.With("session", uuid.NewString())}, nil
}

// NewWithLogger wraps an existing charm logger (tests).
func NewWithLogger(l *log.Logger) *CharmLogger {
	return &CharmLogger{l: l}
}

func (c *CharmLogger) Debug(_ context.Context, msg string, args ...any) { c.l.Debug(msg, args...) }
func (c *CharmLogger) Info(_ context.Context, msg string, args ...any)  { c.l.Info(msg, args...) }
func (c *CharmLogger) Warn(_ context.Context, msg string, args ...any)  { c.l.Warn(msg, args...) }
func (c *CharmLogger) Error(_ context.Context, msg string, args ...any) { c.l.Error(msg, args...) }

func (c *CharmLogger) With(args ...any) Logger {
	return &CharmLogger{l: c.l.With(args...)}
}

// ParseLevel maps a config string to a log level. Empty means warn.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return log.WarnLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ParseFormatter maps a config string to a formatter. Empty means text.
func ParseFormatter(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return 0, fmt.Errorf("unknown log format %q", s)
}
