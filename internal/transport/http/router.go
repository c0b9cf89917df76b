package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bff-gateway/internal/platform/health"
	"bff-gateway/internal/platform/middleware"
)

// NewRouter wires the operational endpoints and mounts the gateway pipeline
// as the catch-all. Everything that is not health or metrics goes through
// authentication, authorization, forwarding, and disclosure filtering.
func NewRouter(gw *Gateway, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Logger(logger))

	health.New().Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Handle("/*", gw)

	return r
}
