// Package logging sets up log/slog for the command line tools: two extra
// levels, level names given by prefix and a text or JSON handler.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogcontext "github.com/veqryn/slog-context"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levels = []struct {
	name  string
	level slog.Level
}{
	{"trace", LevelTrace},
	{"debug", slog.LevelDebug},
	{"info", slog.LevelInfo},
	{"warning", slog.LevelWarn},
	{"error", slog.LevelError},
	{"fatal", LevelFatal},
}

// ParseLevel accepts any prefix of trace, debug, info, warning, error or
// fatal, in any case.
func ParseLevel(value string) (slog.Level, error) {
	lv := strings.ToLower(value)
	if lv != "" {
		for _, l := range levels {
			if strings.HasPrefix(l.name, lv) {
				return l.level, nil
			}
		}
	}
	return 0, errors.New("the loglevel parameter value must be a prefix of one of these words, \"trace\", \"debug\", \"info\", \"warning\", \"error\" or \"fatal\"")
}

// NewHandler returns a text or json handler writing to w.
func NewHandler(w io.Writer, format string, level slog.Leveler) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: levelNames}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	}
	return nil, fmt.Errorf("unknown log format %q, use text or json", format)
}

func levelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	switch a.Value.Any() {
	case LevelTrace:
		a.Value = slog.StringValue("TRACE")
	case LevelFatal:
		a.Value = slog.StringValue("FATAL")
	}
	return a
}

// Trace logs at LevelTrace with the logger of ctx.
func Trace(ctx context.Context, msg string, args ...any) {
	slogcontext.FromCtx(ctx).Log(ctx, LevelTrace, msg, args...)
}

// Fatal logs at LevelFatal with the logger of ctx and terminates the
// program.
func Fatal(ctx context.Context, msg string, args ...any) {
	slogcontext.FromCtx(ctx).Log(ctx, LevelFatal, msg, args...)
	os.Exit(1)
}
