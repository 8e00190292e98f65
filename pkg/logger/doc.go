// Package logger builds slog loggers with context extraction and optional
// Sentry reporting.
//
// A ContextExtractor pulls a request-scoped attribute (request ID, driver
// name) out of the context on every log call:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if id := middleware.GetReqID(ctx); id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New(logger.Config{Level: "debug"}, requestID)
//	log.InfoContext(ctx, "user signed in", slog.String("provider", "discord"))
//
// With Config.Sentry.DSN set, errors create Sentry issues and warnings are
// kept as Sentry logs. An empty DSN logs to stdout only, so the same code
// path works in development.
//
// Library types default to NewNope so they stay silent unless a logger
// is injected.
package logger
