package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
)

// Service applies materialized feed payloads to local storage and kicks the
// cycle engine for every touched account. It owns webhook deduplication; the
// engine itself stays free of ingestion concerns.
type Service struct {
	accountService *account.Service
	ledgerRepo     ledger.Repository
	cycleService   *cycle.Service
	dedup          *Dedup
}

// NewService creates a new ingestion service
func NewService(
	accountService *account.Service,
	ledgerRepo ledger.Repository,
	cycleService *cycle.Service,
	dedupTTL time.Duration,
	dedupCapacity int,
) *Service {
	return &Service{
		accountService: accountService,
		ledgerRepo:     ledgerRepo,
		cycleService:   cycleService,
		dedup:          NewDedup(dedupTTL, dedupCapacity),
	}
}

// Apply ingests one payload: upsert accounts (manual dates protected by the
// account service), upsert ledger entries, then regenerate cycles per
// account. Per-entry failures are collected, not fatal; cycles for accounts
// that ingested cleanly are still regenerated.
func (s *Service) Apply(ctx context.Context, payload FeedPayload) (*Result, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	result := &Result{ItemID: payload.ItemID}

	touched := make(map[string]bool)

	for _, fa := range payload.Accounts {
		if s.dedup.Seen(payload.EventType, fa.ID) {
			log.Printf("Dropping duplicate %s event for account %s", payload.EventType, fa.ID)
			continue
		}

		acct, err := s.accountService.UpsertFromFeed(ctx, account.UpsertParams{
			ID:                     fa.ID,
			UserID:                 fa.UserID,
			ItemID:                 fa.ItemID,
			Name:                   fa.Name,
			Mask:                   fa.Mask,
			OpenDate:               fa.OpenDate,
			CycleDateType:          fa.CycleDateType,
			CycleAnchor:            fa.CycleAnchor,
			DueDateType:            fa.DueDateType,
			DueAnchor:              fa.DueAnchor,
			LastStatementIssueDate: fa.LastStatementIssueDate,
			LastStatementBalance:   fa.LastStatementBalance,
			NextPaymentDueDate:     fa.NextPaymentDueDate,
			MinimumPaymentAmount:   fa.MinimumPaymentAmount,
			BalanceCurrent:         fa.BalanceCurrent,
			BalanceLimit:           fa.BalanceLimit,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to upsert account %s: %v", fa.ID, err))
			continue
		}
		result.AccountsUpserted++
		touched[acct.ID] = true
	}

	for _, fe := range payload.Entries {
		_, err := s.ledgerRepo.Upsert(ctx, ledger.UpsertParams{
			ID:             fe.ID,
			AccountID:      fe.AccountID,
			ItemID:         fe.ItemID,
			Date:           fe.Date,
			AuthorizedDate: fe.AuthorizedDate,
			Amount:         fe.Amount,
			Name:           fe.Name,
			MerchantName:   fe.MerchantName,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to upsert entry %s: %v", fe.ID, err))
			continue
		}
		result.EntriesUpserted++
		if fe.AccountID != "" {
			touched[fe.AccountID] = true
		}
	}

	for accountID := range touched {
		regen, err := s.cycleService.RegenerateCycles(ctx, accountID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to regenerate cycles for account %s: %v", accountID, err))
			continue
		}
		result.CyclesRegenerated += len(regen.Cycles)
	}

	log.Printf("Ingest completed for item %s: accounts=%d, entries=%d, cycles=%d, errors=%d",
		payload.ItemID, result.AccountsUpserted, result.EntriesUpserted, result.CyclesRegenerated, len(result.Errors))

	return result, nil
}
