// Package app wires the tasktrack server runtime: config, logging, stores,
// HTTP routes and the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"tasktrack/cmd/identity"
	"tasktrack/cmd/internal/auth/api"
	"tasktrack/cmd/internal/auth/session"
	"tasktrack/cmd/internal/todo"
	todoapi "tasktrack/cmd/internal/todo/api"
)

const defaultReadinessTimeout = 2 * time.Second

// App is the tasktrack server runtime. It owns the stores and the HTTP wiring.
type App struct {
	cfg Config
	log Logger

	store   *backend
	metrics *Metrics
	handler http.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sessCfg, pwCfg, err := LoadSecurityConfig()
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewServiceFromConfig(sessCfg)
	if err != nil {
		return nil, explainSessionConfig(err)
	}

	st, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, log, st, sessions, pwCfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// newApp builds services and handlers on top of an opened backend.
func newApp(cfg Config, log Logger, st *backend, sessions *session.Service, hasher identity.PasswordHasher) (*App, error) {
	users, err := identity.NewService(st.users, hasher)
	if err != nil {
		return nil, fmt.Errorf("identity service: %w", err)
	}
	tasks, err := todo.NewService(st.tasks)
	if err != nil {
		return nil, fmt.Errorf("todo service: %w", err)
	}

	authHandler, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), users, sessions)
	if err != nil {
		return nil, err
	}
	todoHandler, err := todoapi.NewHandler(log, todoapi.LoadConfigFromEnv(), tasks)
	if err != nil {
		return nil, err
	}

	var metrics *Metrics
	if cfg.MetricsEnabled {
		metrics = NewMetrics()
	}

	router := newRouter(log, cfg, st, metrics, authHandler, todoHandler)

	var h http.Handler = router
	h = WithCORS(h, cfg, log)
	h = WithSecurityHeaders(h)
	if metrics != nil {
		h = metrics.Middleware(h)
	}
	h = WithRequestLogging(log)(h)
	h = withRouteSlot(h)
	h = WithRequestID(h)
	h = WithRecover(log)(h)

	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		metrics: metrics,
		handler: h,
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error. It closes the stores before returning.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is done.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error("store.close.fail", "err", err)
		}
	}()

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	a.log.Info("server.start",
		"addr", ln.Addr().String(),
		"store", a.store.kind,
		"api_prefix", a.cfg.APIPrefix,
		"version", Version,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases store connections. It is safe to call more than once.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	st := a.store
	a.store = nil
	return st.Close()
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
