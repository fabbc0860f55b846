package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"darassa/pkg/client"
	"darassa/pkg/config"
	"darassa/pkg/contracts"
	"darassa/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

var healthPaths = []string{"/health", "/ready"}

type Application struct {
	cfg              *config.Config
	client           *client.Client
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.RateLimiter
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
}

func NewApplication(cfg *config.Config, c *client.Client) *Application {
	return &Application{cfg: cfg, client: c}
}

// SetApp wires the probes and every domain handler behind their middleware stacks.
func (a *Application) SetApp(health contracts.Handler, handlers ...contracts.Handler) {
	a.setHealthHandler(health)
	a.setAppHandler(handlers...)
	a.setAppServer()
}

// Handler exposes the fully wired mux. Tests drive it through httptest.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler(health contracts.Handler) {
	healthRouter := httprouter.New()
	health.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers ...contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.PrincipalOrIPExtractor,
		a.cfg.Log,
	)

	// Wrapped inside out: the last wrapper runs first.
	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyKeyHeader)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	if a.cfg.AuthEnabled() {
		h = middleware.Auth(a.cfg.JWTSecret, a.cfg.Log, healthPaths...)(h)
		a.cfg.Log.Info("JWT authentication enabled")
	} else {
		a.cfg.Log.Warn("JWT_SECRET not set, authentication and role checks are disabled")
	}
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHTTPHandler = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	for _, p := range healthPaths {
		mux.Handle(p, a.healthHandler)
	}
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.stopWorkers()
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) stopWorkers() {
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.stopWorkers()
	a.cfg.Log.Info("Background workers stopped")

	if a.client != nil {
		a.client.GracefulShutdown(ctx)
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
