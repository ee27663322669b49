package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/domain/account"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/cycle"
	"github.com/mlx93/credit-card-app-sub002/internal/domain/ledger"
	"github.com/mlx93/credit-card-app-sub002/internal/infrastructure/postgres"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/config"
)

const usage = `Cardapp Admin CLI - Management commands for the billing-cycle engine

Usage:
  admin <command> [options]

Commands:
  regenerate   Recompute billing cycles from the local ledger

Examples:
  # Regenerate cycles for one account
  admin regenerate --account-id=acc-123

  # Regenerate cycles for several accounts
  admin regenerate --account-id=acc-123,acc-456

  # Regenerate cycles for every tracked account
  admin regenerate --all

  # Run with custom worker count for higher concurrency
  admin regenerate --all --workers=8

  # Run with timeout
  admin regenerate --all --timeout=15m
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "regenerate":
		runRegenerate(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runRegenerate(args []string) {
	fs := flag.NewFlagSet("regenerate", flag.ExitOnError)

	accountIDStr := fs.String("account-id", "", "Account ID(s) to regenerate (comma-separated for multiple)")
	allAccounts := fs.Bool("all", false, "Regenerate every tracked account")
	workers := fs.Int("workers", 4, "Number of concurrent workers")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin regenerate [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin regenerate --account-id=acc-123")
		fmt.Println("  admin regenerate --account-id=acc-123,acc-456")
		fmt.Println("  admin regenerate --all")
		fmt.Println("  admin regenerate --all --workers=8 --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *accountIDStr == "" && !*allAccounts {
		fmt.Println("Error: must specify --account-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	// Parse timeout
	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// Initialize repositories and the engine
	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	cycleRepo := postgres.NewCycleRepository(db)
	cycleService := cycle.NewService(accountRepo, ledgerRepo, cycleRepo,
		ledger.NewLinker(ledgerRepo), ledger.NewClassifier())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var accountIDs []string

	if *allAccounts {
		accountService := account.NewService(accountRepo)
		accounts, err := accountService.ListAllAccounts(ctx)
		if err != nil {
			log.Fatalf("Failed to list accounts: %v", err)
		}
		for _, acc := range accounts {
			accountIDs = append(accountIDs, acc.ID)
		}
		log.Printf("Found %d tracked accounts", len(accountIDs))
	} else {
		for _, p := range strings.Split(*accountIDStr, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				accountIDs = append(accountIDs, p)
			}
		}
	}

	if len(accountIDs) == 0 {
		log.Println("No accounts to process")
		return
	}

	log.Printf("Starting regeneration for %d account(s) with %d workers", len(accountIDs), *workers)
	startTime := time.Now()

	results := regenerateAll(ctx, cycleService, accountIDs, *workers)

	failures := 0
	for _, r := range results {
		printResult(r)
		if r.err != nil {
			failures++
		}
	}

	elapsed := time.Since(startTime)
	log.Printf("Regeneration completed in %v (%d succeeded, %d failed)",
		elapsed, len(results)-failures, failures)
	if failures > 0 {
		os.Exit(1)
	}
}

type regenOutcome struct {
	accountID string
	result    *cycle.RegenerationResult
	err       error
}

// regenerateAll fans accounts out over a bounded worker pool. The engine
// serializes per account internally, so workers never contend on one account.
func regenerateAll(ctx context.Context, svc *cycle.Service, accountIDs []string, workers int) []regenOutcome {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	outcomes := make([]regenOutcome, 0, len(accountIDs))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for accountID := range jobs {
				result, err := svc.RegenerateCycles(ctx, accountID)
				mu.Lock()
				outcomes = append(outcomes, regenOutcome{accountID: accountID, result: result, err: err})
				mu.Unlock()
			}
		}()
	}

	for _, id := range accountIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func printResult(o regenOutcome) {
	fmt.Printf("\n=== Account %s ===\n", o.accountID)
	if o.err != nil {
		fmt.Printf("  Error: %v\n", o.err)
		return
	}

	fmt.Printf("  Cycles generated: %d\n", len(o.result.Cycles))
	if len(o.result.Warnings) > 0 {
		fmt.Printf("  Warnings:         %d\n", len(o.result.Warnings))
		for i, w := range o.result.Warnings {
			if i >= 5 {
				fmt.Printf("    ... and %d more warnings\n", len(o.result.Warnings)-5)
				break
			}
			fmt.Printf("    - [%s] %s\n", w.Code, w.Message)
		}
	}
}
