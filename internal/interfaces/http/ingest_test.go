package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ingest"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
)

func newTestIngestHandler(accountRepo *MockAccountRepo, ledgerRepo *MockLedgerRepo, cycleRepo *MockCycleRepo) *IngestHandler {
	accountService := account.NewService(accountRepo)
	cycleService := cycle.NewService(accountRepo, ledgerRepo, cycleRepo, ledger.NewLinker(ledgerRepo), ledger.NewClassifier())
	ingestService := ingest.NewService(accountService, ledgerRepo, cycleService, 5*time.Minute, 64)
	return NewIngestHandler(ingestService)
}

func feedRepos() (*MockAccountRepo, *MockLedgerRepo, *MockCycleRepo) {
	accountRepo := &MockAccountRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*account.Account, error) {
			return &account.Account{
				ID:            id,
				UserID:        1,
				ItemID:        "item-1",
				Name:          "Sapphire Card",
				CycleDateType: account.DateTypeSameDay,
				CycleAnchor:   15,
				DueDateType:   account.DateTypeSameDay,
				DueAnchor:     10,
			}, nil
		},
		UpsertFunc: func(ctx context.Context, params account.UpsertParams) (*account.Account, error) {
			return &account.Account{ID: params.ID, UserID: params.UserID, ItemID: params.ItemID, Name: params.Name}, nil
		},
	}
	ledgerRepo := &MockLedgerRepo{
		UpsertFunc: func(ctx context.Context, params ledger.UpsertParams) (*ledger.Entry, error) {
			return &ledger.Entry{ID: params.ID, AccountID: params.AccountID}, nil
		},
	}
	return accountRepo, ledgerRepo, &MockCycleRepo{}
}

const feedPayloadJSON = `{
	"eventType": "SYNC_UPDATES_AVAILABLE",
	"itemId": "item-1",
	"accounts": [
		{"id": "acc-1", "userId": 1, "itemId": "item-1", "name": "Sapphire Card", "mask": "1234"}
	],
	"entries": [
		{"id": "txn-1", "accountId": "acc-1", "itemId": "item-1", "date": "2025-09-01T00:00:00Z", "amount": 42.5, "name": "Grocery"}
	]
}`

func TestHandleEvent(t *testing.T) {
	handler := newTestIngestHandler(feedRepos())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/events", strings.NewReader(feedPayloadJSON))
	rr := httptest.NewRecorder()
	handler.HandleEvent(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var result ingest.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.AccountsUpserted != 1 {
		t.Errorf("accounts upserted: got %d want 1", result.AccountsUpserted)
	}
	if result.EntriesUpserted != 1 {
		t.Errorf("entries upserted: got %d want 1", result.EntriesUpserted)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected ingest errors: %v", result.Errors)
	}
}

func TestHandleEventDuplicateDropped(t *testing.T) {
	handler := newTestIngestHandler(feedRepos())

	first := httptest.NewRecorder()
	handler.HandleEvent(first, httptest.NewRequest(http.MethodPost, "/api/ingest/events", strings.NewReader(feedPayloadJSON)))
	if first.Code != http.StatusOK {
		t.Fatalf("first event status: got %d want %d", first.Code, http.StatusOK)
	}

	second := httptest.NewRecorder()
	handler.HandleEvent(second, httptest.NewRequest(http.MethodPost, "/api/ingest/events", strings.NewReader(feedPayloadJSON)))
	if second.Code != http.StatusOK {
		t.Fatalf("duplicate event status: got %d want %d", second.Code, http.StatusOK)
	}

	var result ingest.Result
	if err := json.NewDecoder(second.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.AccountsUpserted != 0 {
		t.Errorf("duplicate event should not upsert accounts, got %d", result.AccountsUpserted)
	}
}

func TestHandleEventInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Missing Item ID", body: `{"eventType": "SYNC_UPDATES_AVAILABLE"}`},
		{name: "Missing Event Type", body: `{"itemId": "item-1"}`},
		{name: "Malformed JSON", body: `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestIngestHandler(feedRepos())

			req := httptest.NewRequest(http.MethodPost, "/api/ingest/events", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleEvent(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}
