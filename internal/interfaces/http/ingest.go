package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/ingest"
)

// IngestHandler receives materialized feed payloads from the sync pipeline
type IngestHandler struct {
	ingestService *ingest.Service
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService *ingest.Service) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// HandleEvent accepts one feed payload and applies it. Duplicate events are
// dropped inside the ingest service; the response still reports 200 with the
// per-payload result so webhook senders never retry on dedup.
func (h *IngestHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload ingest.FeedPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ingestService.Apply(r.Context(), payload)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidPayload) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error applying ingest payload for item %s: %v", payload.ItemID, err)
		http.Error(w, "Failed to apply payload", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
