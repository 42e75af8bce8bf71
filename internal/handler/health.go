// Package handler contains the HTTP request handlers for the Hodeway API.
//
// Every exported Handle* method has the http.HandlerFunc signature, so chi
// mounts them directly. A handler decodes the request, makes one service
// call, and turns the result (or the apperror in it) into JSON.
//
// Handlers hold no business rules. Validation, ownership and credential
// checks all live in internal/service, which is why the handler tests only
// check the HTTP translation.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is the one thing the health check needs from the store.
// repository.Store satisfies it; tests pass a stub.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the root welcome message and the health check.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleRoot answers GET / so a bare request to the server gets something
// friendlier than a 404.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Hodeway API"})
}

// HandleHealthCheck reports whether the database answers.
//
// HTTP: GET /health-check
//
//	200 {"status": "healthy",   "database": "connected"}
//	503 {"status": "unhealthy", "database": "disconnected"}
//
// The ping gets its own 2-second deadline so a hung database makes the
// check fail fast instead of stalling the load balancer's check.
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check: database ping failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
