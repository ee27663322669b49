package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/middleware"
)

// CycleHandler serves computed billing cycles and the regeneration trigger
type CycleHandler struct {
	accountService *account.Service
	cycleService   *cycle.Service
}

// NewCycleHandler creates a new cycle handler
func NewCycleHandler(accountService *account.Service, cycleService *cycle.Service) *CycleHandler {
	return &CycleHandler{
		accountService: accountService,
		cycleService:   cycleService,
	}
}

// HandleRegenerate recomputes the full cycle set for one account
func (h *CycleHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	result, err := h.cycleService.RegenerateCycles(r.Context(), accountID)
	if err != nil {
		log.Printf("Error regenerating cycles for account %s: %v", accountID, err)
		http.Error(w, "Failed to regenerate cycles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleListCycles returns the full cycle history for an account, oldest first
func (h *CycleHandler) HandleListCycles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	cycles, err := h.cycleService.ListCycles(r.Context(), accountID)
	if err != nil {
		log.Printf("Error listing cycles for account %s: %v", accountID, err)
		http.Error(w, "Failed to list cycles", http.StatusInternalServerError)
		return
	}

	if cycles == nil {
		cycles = []*cycle.Cycle{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cycles)
}

// HandleCurrentCycle returns the cycle containing today
func (h *CycleHandler) HandleCurrentCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	c, err := h.cycleService.GetCurrentCycle(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, cycle.ErrNoCurrentCycle) {
			http.Error(w, "No current cycle", http.StatusNotFound)
			return
		}
		log.Printf("Error getting current cycle for account %s: %v", accountID, err)
		http.Error(w, "Failed to get current cycle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// HandleLastClosedCycle returns the newest cycle that ended before today
func (h *CycleHandler) HandleLastClosedCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	c, err := h.cycleService.GetMostRecentClosedCycle(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, cycle.ErrNoClosedCycle) {
			http.Error(w, "No closed cycle", http.StatusNotFound)
			return
		}
		log.Printf("Error getting last closed cycle for account %s: %v", accountID, err)
		http.Error(w, "Failed to get last closed cycle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

// authorize extracts the account ID from the path and verifies the caller
// owns the account. Writes the error response itself on failure.
func (h *CycleHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return "", false
	}

	if _, err := h.accountService.GetAccount(r.Context(), accountID, userID); err != nil {
		writeAccountError(w, accountID, err)
		return "", false
	}

	return accountID, true
}
