// Package httpapi assembles the HTTP surface: middleware, operational
// endpoints and the behandler API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"isdialogmelding/internal/platform/metrics"
	"isdialogmelding/internal/platform/middleware"
	"isdialogmelding/pkg/platform/middleware/auth"
	"isdialogmelding/pkg/platform/middleware/metadata"
	"isdialogmelding/pkg/platform/middleware/requesttime"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config holds what the router needs from the process.
type Config struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Checks run on /internal/is_ready; any failure answers 503.
	Checks map[string]ReadinessCheck
}

// NewRouter wires middleware, the operational endpoints and every registrar.
func NewRouter(cfg Config, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(metadata.CallMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.AccessLog(cfg.Logger, cfg.Metrics))
	r.Use(auth.ForwardBearer(cfg.Logger))

	r.Get("/internal/is_alive", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("I'm alive! :)"))
	})
	r.Get("/internal/is_ready", readiness(cfg.Logger, cfg.Checks))
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/internal/metrics", metrics.Handler(cfg.Gatherer))
	}

	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}

func readiness(logger *slog.Logger, checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("Please wait! I'm not ready :("))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("I'm ready! :)"))
	}
}
