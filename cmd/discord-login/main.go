// Command discord-login serves the Discord sign-in flow.
//
// Configuration is read from config.yaml (searched upward from the working
// directory) and APP__ environment variables, e.g.
//
//	APP__SERVICES__DISCORD__CLIENT_ID=...
//	APP__SERVICES__DISCORD__CLIENT_SECRET=...
//	APP__SERVICES__DISCORD__REDIRECT=http://localhost:8080/auth/discord/callback
//	APP__STATE__SECRET=<32+ bytes>
//	APP__REDIS__URL=redis://localhost:6379/0
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/socialite/internal/app"
	"github.com/dmitrymomot/socialite/pkg/config"
	"github.com/dmitrymomot/socialite/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New(
		config.WithDefaults(app.Defaults()),
		config.WithSearch("config.yaml"),
	)
	if err != nil {
		return err
	}

	var logCfg logger.Config
	if err := cfg.Unmarshal("log", &logCfg); err != nil {
		return fmt.Errorf("read log config: %w", err)
	}
	logCfg.Sentry.MinLevel = slog.LevelWarn

	log := logger.New(logCfg, app.RequestIDExtractor).With("app", "discord-login")
	defer sentry.Flush(2 * time.Second)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", slog.Any("error", err))
		return err
	}

	return a.Run(ctx)
}
