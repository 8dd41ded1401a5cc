// Package logging builds the process logger. Session tokens, passwords and
// signing keys never reach the output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const redacted = "***REDACTED***"

var sensitiveKeys = []string{
	"authorization",
	"token",
	"password",
	"secret",
	"cookie_key",
}

// Options configures New.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New returns a slog logger writing text or JSON to opts.Output (stderr by
// default).
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redact(a)
		},
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to slog.Level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
				return a
			}
			return slog.String(a.Key, redacted)
		}
	}
	if a.Value.Kind() == slog.KindString && strings.HasPrefix(strings.ToLower(a.Value.String()), "bearer ") {
		return slog.String(a.Key, "Bearer "+redacted)
	}
	return a
}
