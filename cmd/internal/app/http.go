package app

import (
	"context"
	"net/http"

	"tasktrack/cmd/internal/auth/api"
	"tasktrack/cmd/internal/httpjson"
	todoapi "tasktrack/cmd/internal/todo/api"

	"github.com/gorilla/mux"
)

// newRouter registers every route on the root and, when configured, again
// under cfg.APIPrefix. Prefixed routes are plain paths on r, not a
// subrouter, so method mismatches answer 405 there too.
func newRouter(
	log Logger,
	cfg Config,
	ready Pinger,
	metrics *Metrics,
	auth *authapi.Handler,
	todos *todoapi.Handler,
) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.WriteError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	r.Use(captureRoute)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), nonZeroDuration(cfg.ReadinessTimeout, defaultReadinessTimeout))
		defer cancel()

		if err := ready.Ping(ctx); err != nil {
			log.Warn("readyz.store.not_ready", "err", err)
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	}).Methods(http.MethodGet, http.MethodHead)

	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	registerAPI(r, "", auth, todos)
	if cfg.APIPrefix != "" {
		registerAPI(r, cfg.APIPrefix, auth, todos)
	}
	return r
}

func registerAPI(r *mux.Router, prefix string, auth *authapi.Handler, todos *todoapi.Handler) {
	auth.Register(r, prefix)
	todos.Register(r, prefix, auth.RequireIdentity)
}
