package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/newsletter-dev/newsletter/shared/logger"
)

const readinessTimeout = 2 * time.Second

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// Health answers GET /health_check while the process is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// Ready answers GET /ready with 503 until the database responds to a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		writeText(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeText(w, http.StatusOK, "ok")
}
