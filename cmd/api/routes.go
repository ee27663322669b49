package main

import (
	"log"
	"net/http"

	"github.com/mlx93/credit-card-app-sub002/internal/shared/config"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", deps.HealthHandler.HandleHealth)

	// Ingest intake (webhook-shaped, dedup-guarded)
	mux.HandleFunc("/api/ingest/events", deps.IngestHandler.HandleEvent)

	// Account configuration
	mux.HandleFunc("/api/accounts", deps.AccountHandler.HandleListAccounts)
	mux.HandleFunc("/api/accounts/{id}", deps.AccountHandler.HandleAccountByID)

	// Billing cycles
	mux.HandleFunc("/api/accounts/{id}/cycles", deps.CycleHandler.HandleListCycles)
	mux.HandleFunc("/api/accounts/{id}/cycles/current", deps.CycleHandler.HandleCurrentCycle)
	mux.HandleFunc("/api/accounts/{id}/cycles/last-closed", deps.CycleHandler.HandleLastClosedCycle)
	mux.HandleFunc("/api/accounts/{id}/cycles/regenerate", deps.CycleHandler.HandleRegenerate)

	// Apply global middleware
	handler := middleware.Logging(middleware.Tracing(middleware.CORS(middleware.UserContext(mux))))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("TLS security middleware enabled (HSTS)")
	}

	return handler
}
