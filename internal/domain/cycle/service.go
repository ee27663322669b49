package cycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
)

var (
	engineTracer       = otel.Tracer("cardapp/cycleengine")
	engineMeter        = otel.Meter("cardapp/cycleengine")
	regenDuration, _   = engineMeter.Float64Histogram("cycles.regeneration.duration", metric.WithDescription("Cycle regeneration duration in seconds"), metric.WithUnit("s"))
	regenTotal, _      = engineMeter.Int64Counter("cycles.regeneration.total", metric.WithDescription("Total cycle regenerations by status"))
	cyclesGenerated, _ = engineMeter.Int64Counter("cycles.generated.total", metric.WithDescription("Cycles produced by regeneration"))
)

// Service is the billing-cycle engine's entry point. It is a pure function
// of Account + ledger, modulo the synchronizer's preserve-reconciled-history
// rule, and is safe to re-run at any time.
type Service struct {
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	cycleRepo   Repository
	linker      *ledger.Linker
	classifier  *ledger.Classifier
	reconciler  *Reconciler

	// One mutex per account: regeneration is delete-then-recompute and must
	// not interleave for the same account. Different accounts run in
	// parallel.
	locks sync.Map // accountID -> *sync.Mutex

	now func() time.Time
}

// NewService creates a new cycle engine service
func NewService(
	accountRepo account.Repository,
	ledgerRepo ledger.Repository,
	cycleRepo Repository,
	linker *ledger.Linker,
	classifier *ledger.Classifier,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		cycleRepo:   cycleRepo,
		linker:      linker,
		classifier:  classifier,
		reconciler:  NewReconciler(),
		now:         time.Now,
	}
}

// SetClock overrides the engine clock (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) lockAccount(accountID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(accountID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RegenerateCycles recomputes the full cycle set for an account and persists
// the minimal mutation set. Used after sync, after manual date edits and
// after repairs. Non-fatal anomalies come back as warnings; only missing
// accounts and storage failures are errors.
func (s *Service) RegenerateCycles(ctx context.Context, accountID string) (*RegenerationResult, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	mu := s.lockAccount(accountID)
	mu.Lock()
	defer mu.Unlock()

	ctx, span := engineTracer.Start(ctx, "cycles.regenerate")
	span.SetAttributes(attribute.String("account.id", accountID))
	defer span.End()

	start := time.Now()
	result, err := s.regenerate(ctx, accountID)
	regenDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		regenTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		return nil, err
	}

	regenTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	cyclesGenerated.Add(ctx, int64(len(result.Cycles)))

	log.Printf("Regenerated %d cycles for account %s (%d warnings)",
		len(result.Cycles), accountID, len(result.Warnings))

	return result, nil
}

func (s *Service) regenerate(ctx context.Context, accountID string) (*RegenerationResult, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	// Orphaned entries must be linked before aggregation; this is a
	// precondition, not a concurrent step.
	if _, _, err := s.linker.LinkPending(ctx, acct.ItemID, acct.ID, acct.Mask); err != nil {
		return nil, fmt.Errorf("failed to link pending entries: %w", err)
	}

	entries, err := s.ledgerRepo.ListByAccount(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	openDate, warnings, err := s.effectiveOpenDate(ctx, acct)
	if err != nil {
		return nil, err
	}

	today := s.now()
	fresh, computeWarnings := s.compute(acct, openDate, entries, today)
	warnings = append(warnings, computeWarnings...)

	persisted, err := s.cycleRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted cycles: %w", err)
	}

	mut := Diff(persisted, fresh, today)
	if !mut.Empty() {
		if err := s.cycleRepo.ReplaceCycles(ctx, accountID, mut); err != nil {
			return nil, fmt.Errorf("failed to persist cycles: %w", err)
		}
	}

	// Preserved reconciled history can introduce duplicate statement
	// balances that the fresh computation alone cannot see.
	warnings = append(warnings, flagDuplicateStatements(fresh)...)

	return &RegenerationResult{
		AccountID: accountID,
		Cycles:    fresh,
		Warnings:  warnings,
	}, nil
}

// effectiveOpenDate resolves the generation lower bound. A missing open date
// falls back to the date of the account's earliest ledger entry, with a
// warning; nil means truly unknown.
func (s *Service) effectiveOpenDate(ctx context.Context, acct *account.Account) (*time.Time, []Warning, error) {
	if acct.OpenDate != nil {
		return acct.OpenDate, nil, nil
	}

	earliest, err := s.ledgerRepo.EarliestDateByAccount(ctx, acct.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find earliest ledger entry: %w", err)
	}
	if earliest == nil {
		return nil, nil, nil
	}

	d := DateOnly(*earliest)
	return &d, []Warning{{
		Code:    WarnOpenDateDerived,
		Message: fmt.Sprintf("open date missing, derived %s from earliest ledger entry", d.Format("2006-01-02")),
	}}, nil
}

// compute derives the full cycle list in memory: boundaries, aggregation,
// reconciliation. No storage involved.
func (s *Service) compute(acct *account.Account, openDate *time.Time, entries []*ledger.Entry, today time.Time) ([]*Cycle, []Warning) {
	boundaries, warnings := GenerateBoundaries(GenerateInput{
		Today:         today,
		OpenDate:      openDate,
		CycleDateType: acct.CycleDateType,
		CycleAnchor:   acct.CycleAnchor,
		DueDateType:   acct.DueDateType,
		DueAnchor:     acct.DueAnchor,
	})

	cycles := make([]*Cycle, 0, len(boundaries))
	for _, b := range boundaries {
		total, count := AggregateSpend(b, entries, s.classifier, today)
		cycles = append(cycles, &Cycle{
			AccountID:        acct.ID,
			StartDate:        b.Start,
			EndDate:          b.End,
			DueDate:          b.Due,
			TotalSpend:       total,
			TransactionCount: count,
		})
	}

	warnings = append(warnings, s.reconciler.Reconcile(cycles, acct, today)...)

	return cycles, warnings
}

// GetCurrentCycle returns the cycle containing today. It serves from the
// store when a row exists and otherwise computes just the needed numbers in
// memory, so instant-setup flows see data before the first full regeneration
// has persisted anything.
func (s *Service) GetCurrentCycle(ctx context.Context, accountID string) (*Cycle, error) {
	today := s.now()

	c, err := s.cycleRepo.GetCurrent(ctx, accountID, today)
	if err == nil && c != nil {
		return c, nil
	}
	if err != nil && !errors.Is(err, ErrCycleNotFound) {
		return nil, err
	}

	cycles, err := s.computeForAccount(ctx, accountID, today)
	if err != nil {
		return nil, err
	}
	for _, c := range cycles {
		if c.IsCurrent(today) {
			return c, nil
		}
	}
	return nil, ErrNoCurrentCycle
}

// GetMostRecentClosedCycle returns the newest cycle that ended before today,
// store-first with the same compute-on-miss fallback as GetCurrentCycle.
func (s *Service) GetMostRecentClosedCycle(ctx context.Context, accountID string) (*Cycle, error) {
	today := s.now()

	c, err := s.cycleRepo.GetMostRecentClosed(ctx, accountID, today)
	if err == nil && c != nil {
		return c, nil
	}
	if err != nil && !errors.Is(err, ErrCycleNotFound) {
		return nil, err
	}

	cycles, err := s.computeForAccount(ctx, accountID, today)
	if err != nil {
		return nil, err
	}
	var latest *Cycle
	for _, c := range cycles {
		if c.Closed(today) {
			latest = c
		}
	}
	if latest == nil {
		return nil, ErrNoClosedCycle
	}
	return latest, nil
}

// ListCycles returns the full cycle history for an account, oldest first.
// Serves from the store when rows exist, otherwise computes in memory.
func (s *Service) ListCycles(ctx context.Context, accountID string) ([]*Cycle, error) {
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	cycles, err := s.cycleRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(cycles) > 0 {
		return cycles, nil
	}
	return s.computeForAccount(ctx, accountID, s.now())
}

func (s *Service) computeForAccount(ctx context.Context, accountID string, today time.Time) ([]*Cycle, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	entries, err := s.ledgerRepo.ListByAccount(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	openDate, _, err := s.effectiveOpenDate(ctx, acct)
	if err != nil {
		return nil, err
	}
	cycles, _ := s.compute(acct, openDate, entries, today)
	return cycles, nil
}
