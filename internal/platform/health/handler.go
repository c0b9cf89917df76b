// Package health provides the HTTP liveness probe for the gateway.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bff-gateway/internal/transport/http/json"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Handler serves the health endpoint. The gateway is stateless, so there is
// no readiness distinction: if the process answers, it is ready.
type Handler struct {
	startTime time.Time
}

// New creates a new health handler.
func New() *Handler {
	return &Handler{startTime: time.Now()}
}

// Register mounts the health route on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
}

// HealthResponse is the response body for the health probe.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HandleHealth always returns 200 OK while the process is running.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	json.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}
