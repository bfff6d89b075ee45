package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"

	"home-valuation/internal/config"
)

type ctxKey struct{}

// Options controls handler construction
type Options struct {
	Writer    io.Writer
	Level     slog.Leveler
	JSON      bool
	AddSource bool
}

// New builds the process logger from configuration. The returned closer
// releases the Fluent connection when one is configured.
func New(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	level := ParseLevel(cfg.Level)
	handler := NewHandler(Options{
		Writer: os.Stdout,
		Level:  level,
		JSON:   strings.EqualFold(cfg.Format, "json"),
	})

	closer := func() error { return nil }
	if cfg.FluentEnabled {
		client, err := fluent.New(fluent.Config{
			FluentHost: cfg.FluentHost,
			FluentPort: cfg.FluentPort,
			TagPrefix:  cfg.FluentTag,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create fluent logger: %w", err)
		}
		handler = NewFanoutHandler(handler, NewFluentHandler(client, level))
		closer = client.Close
	}

	return slog.New(handler), closer, nil
}

// NewHandler returns a tint handler for terminals or a JSON handler
func NewHandler(opts Options) slog.Handler {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	if opts.JSON {
		return slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		})
	}

	return tint.NewHandler(opts.Writer, &tint.Options{
		Level:      opts.Level,
		AddSource:  opts.AddSource,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// WithContext stores a request-scoped logger
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger or slog.Default()
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// Discard returns a logger that drops everything, for tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
