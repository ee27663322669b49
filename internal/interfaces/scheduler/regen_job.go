package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
)

// RegenerationJob rebuilds the cycle ledger for one account.
type RegenerationJob struct {
	accountID    string
	cycleService *cycle.Service
}

// NewRegenerationJob creates a job that regenerates cycles for an account.
func NewRegenerationJob(accountID string, cycleService *cycle.Service) *RegenerationJob {
	return &RegenerationJob{
		accountID:    accountID,
		cycleService: cycleService,
	}
}

// Execute runs the regeneration through the cycle engine.
func (j *RegenerationJob) Execute(ctx context.Context) error {
	result, err := j.cycleService.RegenerateCycles(ctx, j.accountID)
	if err != nil {
		return fmt.Errorf("failed to regenerate cycles for account %s: %w", j.accountID, err)
	}

	for _, w := range result.Warnings {
		log.Printf("Regeneration warning for account %s [%s]: %s", j.accountID, w.Code, w.Message)
	}
	log.Printf("Regenerated %d cycles for account %s", len(result.Cycles), j.accountID)
	return nil
}

// AccountID returns the account this job regenerates.
func (j *RegenerationJob) AccountID() string {
	return j.accountID
}

// Description returns a human-readable description for logging.
func (j *RegenerationJob) Description() string {
	return fmt.Sprintf("cycle regeneration for account %s", j.accountID)
}
