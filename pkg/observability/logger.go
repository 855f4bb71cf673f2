// Package observability provides structured logging, metrics, health checks
// and correlation helpers shared by the grim hosts.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogConfig configures NewLogger.
type LogConfig struct {
	// Level is a slog level name: debug, info, warn or error.
	Level  string
	Format LogFormat
	// Output defaults to os.Stderr. Stdout belongs to command output and
	// to the MCP stdio transport.
	Output    io.Writer
	AddSource bool
	Version   string
}

// ConfigFor derives a LogConfig from the environment name plus optional
// level and format overrides. Production logs JSON with source locations.
func ConfigFor(env, level, format string) LogConfig {
	cfg := LogConfig{Level: "info", Format: LogFormatText, Version: "dev"}
	if env == "production" {
		cfg.Format = LogFormatJSON
		cfg.AddSource = true
	}
	if level != "" {
		cfg.Level = level
	}
	if format != "" {
		cfg.Format = LogFormat(strings.ToLower(format))
	}
	if v := os.Getenv("GRIM_VERSION"); v != "" {
		cfg.Version = v
	}
	return cfg
}

// LoggerFromEnv builds the bootstrap logger used before config.Load has
// run, from GRIM_ENV, GRIM_LOG_LEVEL and GRIM_LOG_FORMAT.
func LoggerFromEnv() *slog.Logger {
	return NewLogger(ConfigFor(os.Getenv("GRIM_ENV"), os.Getenv("GRIM_LOG_LEVEL"), os.Getenv("GRIM_LOG_FORMAT")))
}

// NewLogger creates a logger that tags every record with the service
// version and the ids carried by the record's context.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: cfg.AddSource}
	var h slog.Handler
	if cfg.Format == LogFormatJSON {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	h = h.WithAttrs([]slog.Attr{slog.String("service", "grim")})
	if cfg.Version != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("version", cfg.Version)})
	}
	return slog.New(contextHandler{h})
}

// parseLevel accepts slog's own names ("debug", "WARN", "info+2").
// Anything unreadable means info.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// contextHandler adds correlation, invocation, operation and user ids from
// the context passed to the *Context logging methods.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, kv := range [...]struct{ key, val string }{
		{CorrelationIDKey, CorrelationIDFromContext(ctx)},
		{InvocationIDKey, InvocationIDFromContext(ctx)},
		{OperationKey, OperationFromContext(ctx)},
		{UserIDKey, UserIDFromContext(ctx)},
	} {
		if kv.val != "" {
			r.AddAttrs(slog.String(kv.key, kv.val))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
