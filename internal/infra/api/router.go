package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"meal-subscriptions/internal/config"
	"meal-subscriptions/internal/infra/api/apiv1"
	red "meal-subscriptions/internal/infra/redis"
)

// Pinger is satisfied by *pgxpool.Pool and the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WriteGuards are the optional Redis-backed protections for unsafe requests.
type WriteGuards struct {
	Limiter Limiter
	Locker  red.Locker
}

// NewRouter builds the service handler: middlewares, /health, /metrics and /api/v1.
func NewRouter(srv *apiv1.Server, logger *zerolog.Logger, cfg config.HTTPConfig, guards WriteGuards, checks map[string]Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(TraceID(), CallerID())
	r.Use(Recover(logger), RequestLog(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(Timeout(cfg.RequestTimeout))
	}
	if guards.Limiter != nil && cfg.RateLimit > 0 {
		r.Use(RateLimit(guards.Limiter, cfg.RateLimit, cfg.RateWindow, logger))
	}
	if guards.Locker != nil {
		r.Use(SingleWrite(guards.Locker, cfg.WriteLockTTL, logger))
	}

	r.Get("/health", health(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	apiv1.RegisterAPIV1(r, srv)
	return r
}

func health(checks map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				out[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": status == http.StatusOK,
			"checks":  out,
		})
	}
}
