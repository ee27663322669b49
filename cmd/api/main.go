package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlx93/credit-card-app-sub002/internal/interfaces/scheduler"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/config"
	"github.com/mlx93/credit-card-app-sub002/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Initialize telemetry (if enabled)
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Printf("Telemetry shutdown error: %v", err)
			}
		}()
	}

	// Initialize dependencies
	deps, err := NewDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Start listening for out-of-band ledger changes
	if deps.LedgerListener != nil {
		deps.LedgerListener.Start(ctx)
		defer deps.LedgerListener.Stop()
	}

	// Initialize scheduler (if enabled)
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		scheduleTimes := make([]scheduler.ScheduleTime, 0, len(cfg.Scheduler.ScheduleTimes))
		for _, raw := range cfg.Scheduler.ScheduleTimes {
			st, err := scheduler.ParseScheduleTime(raw)
			if err != nil {
				return err
			}
			scheduleTimes = append(scheduleTimes, st)
		}

		sched = scheduler.NewScheduler(scheduler.Config{
			ScheduleTimes: scheduleTimes,
			WorkerCount:   cfg.Scheduler.WorkerCount,
			JobDelay:      cfg.Scheduler.JobDelay,
			QueueSize:     cfg.Scheduler.QueueSize,
			RunOnStartup:  cfg.Scheduler.RunOnStartup,
			JobProvider: func(ctx context.Context) ([]scheduler.Job, error) {
				accounts, err := deps.AccountService.ListAllAccounts(ctx)
				if err != nil {
					return nil, err
				}
				jobs := make([]scheduler.Job, 0, len(accounts))
				for _, acc := range accounts {
					jobs = append(jobs, scheduler.NewRegenerationJob(acc.ID, deps.CycleService))
				}
				return jobs, nil
			},
		})
		sched.Start()
	} else {
		log.Println("Scheduler is disabled")
	}

	// Set up routes and start servers
	handler := SetupRoutes(deps, cfg)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg))

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, redirectSrv, sched, 30*time.Second)
	return nil
}
