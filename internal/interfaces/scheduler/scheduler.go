package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ScheduleTime represents a time of day for scheduled runs.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the schedule time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses a "HH:MM" string into a ScheduleTime.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return ScheduleTime{}, fmt.Errorf("invalid schedule time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid schedule hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid schedule minute in %q", s)
	}

	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// JobProvider builds the batch of jobs for a scheduled run, typically one
// regeneration job per known account.
type JobProvider func(ctx context.Context) ([]Job, error)

// Config holds scheduler configuration.
type Config struct {
	ScheduleTimes []ScheduleTime
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
	JobProvider   JobProvider
}

// Scheduler triggers cycle regeneration sweeps at configured times of day.
type Scheduler struct {
	config   Config
	pool     *WorkerPool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	lastRuns map[string]string
}

// NewScheduler creates a scheduler with its own worker pool.
func NewScheduler(config Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		config:   config,
		pool:     NewWorkerPool(config.WorkerCount, config.JobDelay, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		lastRuns: make(map[string]string),
	}
}

// Start launches the worker pool and the schedule loop.
func (s *Scheduler) Start() {
	s.pool.Start()

	if s.config.RunOnStartup {
		log.Println("Scheduler: running startup sweep")
		go s.runJobs()
	}

	s.wg.Add(1)
	go s.scheduleLoop()

	times := make([]string, 0, len(s.config.ScheduleTimes))
	for _, st := range s.config.ScheduleTimes {
		times = append(times, st.String())
	}
	log.Printf("Scheduler started with run times: %s", strings.Join(times, ", "))
}

// scheduleLoop checks every minute whether a configured run time was reached.
func (s *Scheduler) scheduleLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Scheduler: schedule loop stopped")
			return
		case now := <-ticker.C:
			for _, st := range s.config.ScheduleTimes {
				if s.shouldRun(st, now) {
					log.Printf("Scheduler: triggering scheduled run for %s", st)
					go s.runJobs()
				}
			}
		}
	}
}

// shouldRun reports whether the schedule time matches now and has not already
// fired today.
func (s *Scheduler) shouldRun(st ScheduleTime, now time.Time) bool {
	if now.Hour() != st.Hour || now.Minute() != st.Minute {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.Format("2006-01-02")
	key := st.String()
	if s.lastRuns[key] == today {
		return false
	}
	s.lastRuns[key] = today
	return true
}

// runJobs asks the provider for the job batch and submits it to the pool.
func (s *Scheduler) runJobs() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	jobs, err := s.config.JobProvider(ctx)
	if err != nil {
		log.Printf("Scheduler: failed to build job batch: %v", err)
		return
	}
	if len(jobs) == 0 {
		log.Println("Scheduler: no accounts to process")
		return
	}

	s.pool.SubmitBatch(jobs)
}

// TriggerNow runs a sweep immediately, outside the schedule.
func (s *Scheduler) TriggerNow() {
	log.Println("Scheduler: manual trigger")
	go s.runJobs()
}

// Shutdown stops the schedule loop and drains the worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	log.Println("Scheduler: shutting down")

	s.cancel()
	s.wg.Wait()

	s.pool.ShutdownWithTimeout(timeout)

	log.Println("Scheduler: shutdown complete")
}
