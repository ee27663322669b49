package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is the slice of the database the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports process and database liveness
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealth returns 200 when the database answers a ping, 503 otherwise
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
