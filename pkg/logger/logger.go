package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config holds logger configuration.
type Config struct {
	Level  string       `koanf:"level"`  // debug, info, warn, error
	Format string       `koanf:"format"` // json or text
	Sentry SentryConfig `koanf:"sentry"`
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" koanf:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" koanf:"environment"`
	// MinLevel determines which log levels are kept in Sentry as logs
	// (e.g., slog.LevelWarn for warnings+errors). Errors always create issues.
	MinLevel slog.Level `koanf:"-"`
}

// New creates a logger writing to stdout with optional context extractors.
// When cfg.Sentry.DSN is set, records are also sent to Sentry; if the SDK
// fails to initialize the logger falls back to stdout only.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return newLogger(os.Stdout, cfg, extractors...)
}

func newLogger(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var stdout slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		stdout = slog.NewTextHandler(w, opts)
	} else {
		stdout = slog.NewJSONHandler(w, opts)
	}

	if cfg.Sentry.DSN == "" {
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewContextHandler(stdout, extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.Sentry.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewContextHandler(newMultiHandler(stdout, sentryHandler), extractors...))
}

// ParseLevel maps a level name to slog.Level. Unknown names yield Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// NewNope returns a logger that drops every record. Library types use it
// when the caller does not pass a logger.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
