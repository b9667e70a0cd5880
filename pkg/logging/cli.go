// Package logging provides the slog handler used by the command line.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
)

// CLIHandler is a custom slog.Handler for CLI output. Records print as
// one colored line: [group] message: key=value ...
type CLIHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Level
	prefix string
	attrs  []slog.Attr
}

func NewCLIHandler(w io.Writer, level slog.Level) *CLIHandler {
	return &CLIHandler{
		mu:     &sync.Mutex{},
		writer: w,
		level:  level,
	}
}

func (h *CLIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *CLIHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	if h.prefix != "" {
		msg = "[" + h.prefix + "] " + msg
	}

	attrs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs = append(attrs, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, formatAttr(a))
		return true
	})
	if len(attrs) > 0 {
		msg = msg + ": " + strings.Join(attrs, " ")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.writer, levelColor(r.Level).Sprint(msg))
	return err
}

func (h *CLIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)
	return c
}

func (h *CLIHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.prefix = name
	return c
}

func (h *CLIHandler) clone() *CLIHandler {
	return &CLIHandler{
		mu:     h.mu,
		writer: h.writer,
		level:  h.level,
		prefix: h.prefix,
		attrs:  append([]slog.Attr(nil), h.attrs...),
	}
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value)
}

func levelColor(l slog.Level) color.Color {
	switch {
	case l >= slog.LevelError:
		return color.Red
	case l >= slog.LevelWarn:
		return color.Yellow
	case l >= slog.LevelInfo:
		return color.Green
	default:
		return color.Gray
	}
}

func NewCLILogger(level string) *slog.Logger {
	lev := ParseLogLevel(level)
	handler := NewCLIHandler(os.Stderr, lev)
	return slog.New(handler)
}

func SetDefaultCLILogger(level string) {
	slog.SetDefault(NewCLILogger(level))
}

// ParseLogLevel converts a string log level to slog.Level.
// Defaults to slog.LevelInfo for unrecognized strings.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
