package main

import (
	"context"
	"log"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ingest"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
	"github.com/mlx93/credit-card-app-sub002/internal/infrastructure/postgres"
	"github.com/mlx93/credit-card-app-sub002/internal/infrastructure/postgres/listener"
	httphandlers "github.com/mlx93/credit-card-app-sub002/internal/interfaces/http"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AccountHandler *httphandlers.AccountHandler
	CycleHandler   *httphandlers.CycleHandler
	IngestHandler  *httphandlers.IngestHandler
	HealthHandler  *httphandlers.HealthHandler

	// Services
	AccountService *account.Service
	CycleService   *cycle.Service
	IngestService  *ingest.Service

	// Out-of-band change listener
	LedgerListener *listener.LedgerListener
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	cycleRepo := postgres.NewCycleRepository(db)

	// Initialize domain services
	accountService := account.NewService(accountRepo)
	linker := ledger.NewLinker(ledgerRepo)
	classifier := ledger.NewClassifier()
	cycleService := cycle.NewService(accountRepo, ledgerRepo, cycleRepo, linker, classifier)
	ingestService := ingest.NewService(accountService, ledgerRepo, cycleService,
		cfg.Ingest.DedupTTL, cfg.Ingest.DedupCapacity)

	// Initialize handlers
	accountHandler := httphandlers.NewAccountHandler(accountService)
	cycleHandler := httphandlers.NewCycleHandler(accountService, cycleService)
	ingestHandler := httphandlers.NewIngestHandler(ingestService)
	healthHandler := httphandlers.NewHealthHandler(db)

	deps := &Dependencies{
		DB:             db,
		AccountHandler: accountHandler,
		CycleHandler:   cycleHandler,
		IngestHandler:  ingestHandler,
		HealthHandler:  healthHandler,
		AccountService: accountService,
		CycleService:   cycleService,
		IngestService:  ingestService,
	}

	if cfg.Listener.Enabled {
		deps.LedgerListener = listener.NewLedgerListener(
			cfg.Database.ConnectionString(),
			&regenAdapter{cycleService},
		)
	}

	return deps, nil
}

// regenAdapter narrows the cycle service to the listener's Regenerator shape.
type regenAdapter struct {
	cycleService *cycle.Service
}

func (a *regenAdapter) RegenerateAccount(ctx context.Context, accountID string) error {
	_, err := a.cycleService.RegenerateCycles(ctx, accountID)
	return err
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
