// Package app wires configuration, logging, state storage and the OAuth
// driver manager into the login HTTP service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/socialite/pkg/config"
	"github.com/dmitrymomot/socialite/pkg/health"
	"github.com/dmitrymomot/socialite/pkg/logger"
	"github.com/dmitrymomot/socialite/pkg/oauth"
	"github.com/dmitrymomot/socialite/pkg/oauth/discord"
	"github.com/dmitrymomot/socialite/pkg/redis"
)

const (
	defaultAddress         = ":8080"
	defaultShutdownTimeout = 30 * time.Second
)

// Defaults are the configuration defaults of the service.
func Defaults() map[string]any {
	return map[string]any{
		"server.address":          defaultAddress,
		"server.shutdown_timeout": defaultShutdownTimeout.String(),
		"state.ttl":               "10m",
		"log.level":               "info",
		"log.format":              "json",
	}
}

// App is the login service.
type App struct {
	router        chi.Router
	logger        *slog.Logger
	manager       *oauth.Manager
	address       string
	shutdownHooks []func(context.Context) error
	shutdownAfter time.Duration
}

// Option configures an App.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient sets the HTTP client used to talk to providers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// New builds the service from cfg. A configured redis.url switches state
// storage to Redis; otherwise states live in signed cookies.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.NewNope()
	}

	a := &App{
		logger:        log,
		address:       cfg.String("server.address"),
		shutdownAfter: cfg.Duration("server.shutdown_timeout"),
	}
	if a.address == "" {
		a.address = defaultAddress
	}
	if a.shutdownAfter <= 0 {
		a.shutdownAfter = defaultShutdownTimeout
	}

	checks := health.Checks{}

	store, err := a.stateStore(ctx, cfg, checks)
	if err != nil {
		return nil, err
	}

	clientOpts := []oauth.ClientOption{
		oauth.WithLogger(log),
		oauth.WithHTTPClient(o.httpClient),
	}
	if store != nil {
		clientOpts = append(clientOpts, oauth.WithStateStore(store))
	}

	a.manager = oauth.NewManager(cfg, clientOpts...)
	discord.Register(a.manager)

	a.router = a.routes(checks)
	return a, nil
}

// Router returns the HTTP handler of the service.
func (a *App) Router() http.Handler {
	return a.router
}

// Manager returns the driver manager.
func (a *App) Manager() *oauth.Manager {
	return a.manager
}

func (a *App) stateStore(ctx context.Context, cfg *config.Config, checks health.Checks) (oauth.StateStore, error) {
	stateOpts := []oauth.StateOption{
		oauth.WithStateTTL(cfg.Duration("state.ttl")),
		oauth.WithCookieSecure(cfg.Bool("state.secure")),
		oauth.WithCookieDomain(cfg.String("state.domain")),
	}

	if cfg.Exists("redis.url") {
		var rc redis.Config
		if err := cfg.Unmarshal("redis", &rc); err != nil {
			return nil, fmt.Errorf("app: read redis config: %w", err)
		}
		client, err := redis.Open(ctx, rc)
		if err != nil {
			return nil, err
		}
		checks["redis"] = redis.Healthcheck(client)
		a.shutdownHooks = append(a.shutdownHooks, func(context.Context) error { return client.Close() })
		return oauth.NewRedisStateStore(client, stateOpts...), nil
	}

	secret := cfg.String("state.secret")
	if secret == "" {
		a.logger.Warn("state.secret is not set; state cookies are signed with a per-process key")
		return nil, nil
	}

	store, err := oauth.NewCookieStateStore(secret, stateOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: state.secret: %w", err)
	}
	return store, nil
}

func (a *App) routes(checks health.Checks) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(a.logger)))

	r.Route("/auth/{driver}", func(r chi.Router) {
		r.Get("/", a.redirect)
		r.Get("/callback", a.callback)
	})

	return r
}

// requestLogger logs one line per request.
func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// RequestIDExtractor adds chi's request ID to log records.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}
