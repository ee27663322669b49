package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/middleware"
)

// AccountHandler serves the account configuration surface
type AccountHandler struct {
	accountService *account.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *account.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// UpdateCyclePolicyRequest carries a user-authored anchor or open-date edit.
// All fields are optional; absent fields are left untouched.
type UpdateCyclePolicyRequest struct {
	OpenDate      *string  `json:"openDate,omitempty"` // YYYY-MM-DD
	CycleDateType *string  `json:"cycleDateType,omitempty"`
	CycleAnchor   *int     `json:"cycleAnchor,omitempty"`
	DueDateType   *string  `json:"dueDateType,omitempty"`
	DueAnchor     *int     `json:"dueAnchor,omitempty"`
	ManualLimit   *float64 `json:"manualLimit,omitempty"`
}

// HandleListAccounts returns all accounts for the requesting user
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accounts, err := h.accountService.ListAccountsByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing accounts for user %d: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	if accounts == nil {
		accounts = []*account.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// HandleAccountByID handles GET, PATCH and DELETE on a specific account
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetAccount(w, r, userID, accountID)
	case http.MethodPatch:
		h.handleUpdateCyclePolicy(w, r, userID, accountID)
	case http.MethodDelete:
		h.handleDeleteAccount(w, r, userID, accountID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AccountHandler) handleGetAccount(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	acc, err := h.accountService.GetAccount(r.Context(), accountID, userID)
	if err != nil {
		writeAccountError(w, accountID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acc)
}

// handleUpdateCyclePolicy applies a manual anchor or open-date change. This
// is the validating boundary: bad anchors come back 400 and never reach the
// generator. Cycle regeneration is the caller's next step, via the
// regenerate endpoint.
func (h *AccountHandler) handleUpdateCyclePolicy(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	var req UpdateCyclePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := account.CyclePolicyParams{
		CycleDateType: req.CycleDateType,
		CycleAnchor:   req.CycleAnchor,
		DueDateType:   req.DueDateType,
		DueAnchor:     req.DueAnchor,
		ManualLimit:   req.ManualLimit,
	}
	if req.OpenDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.OpenDate)
		if err != nil {
			http.Error(w, "Invalid open date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		params.OpenDate = &parsed
	}

	acc, err := h.accountService.UpdateCyclePolicy(r.Context(), accountID, userID, params)
	if err != nil {
		writeAccountError(w, accountID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acc)
}

func (h *AccountHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	if err := h.accountService.DeleteAccount(r.Context(), accountID, userID); err != nil {
		writeAccountError(w, accountID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeAccountError maps account domain errors onto HTTP statuses
func writeAccountError(w http.ResponseWriter, accountID string, err error) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound):
		http.Error(w, "Account not found", http.StatusNotFound)
	case errors.Is(err, account.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, account.ErrInvalidAnchor), errors.Is(err, account.ErrInvalidDateType), errors.Is(err, account.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error handling account %s: %v", accountID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
