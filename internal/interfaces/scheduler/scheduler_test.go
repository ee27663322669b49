package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testJob struct {
	accountID string
	execute   func(ctx context.Context) error
}

func (j *testJob) Execute(ctx context.Context) error {
	if j.execute != nil {
		return j.execute(ctx)
	}
	return nil
}

func (j *testJob) AccountID() string { return j.accountID }

func (j *testJob) Description() string { return "test job for account " + j.accountID }

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		input   string
		want    ScheduleTime
		wantErr bool
	}{
		{input: "05:00", want: ScheduleTime{Hour: 5, Minute: 0}},
		{input: "23:59", want: ScheduleTime{Hour: 23, Minute: 59}},
		{input: " 12:30 ", want: ScheduleTime{Hour: 12, Minute: 30}},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "12", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseScheduleTime(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseScheduleTime(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseScheduleTime(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseScheduleTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestScheduleTimeString(t *testing.T) {
	if got := (ScheduleTime{Hour: 5, Minute: 7}).String(); got != "05:07" {
		t.Errorf("String() = %q, want 05:07", got)
	}
}

func TestShouldRunOncePerDay(t *testing.T) {
	s := NewScheduler(Config{WorkerCount: 1, QueueSize: 1})
	st := ScheduleTime{Hour: 5, Minute: 0}

	day1 := time.Date(2025, time.September, 15, 5, 0, 30, 0, time.UTC)

	if !s.shouldRun(st, day1) {
		t.Error("first tick at the schedule time should fire")
	}
	if s.shouldRun(st, day1.Add(10*time.Second)) {
		t.Error("second tick in the same minute must not fire again")
	}
	if s.shouldRun(st, time.Date(2025, time.September, 15, 6, 0, 0, 0, time.UTC)) {
		t.Error("a different hour must not fire")
	}

	day2 := day1.AddDate(0, 0, 1)
	if !s.shouldRun(st, day2) {
		t.Error("the next day should fire again")
	}
}

func TestWorkerPoolProcessesJobs(t *testing.T) {
	pool := NewWorkerPool(2, 0, 8)
	pool.Start()

	var mu sync.Mutex
	processed := make(map[string]bool)
	var wg sync.WaitGroup

	for _, id := range []string{"acc-1", "acc-2", "acc-3"} {
		wg.Add(1)
		accountID := id
		err := pool.Submit(&testJob{
			accountID: accountID,
			execute: func(ctx context.Context) error {
				defer wg.Done()
				mu.Lock()
				processed[accountID] = true
				mu.Unlock()
				return nil
			},
		})
		if err != nil {
			t.Fatalf("Submit(%s): %v", accountID, err)
		}
	}

	wg.Wait()
	pool.Shutdown()

	if len(processed) != 3 {
		t.Errorf("processed %d jobs, want 3", len(processed))
	}
}

func TestWorkerPoolJobErrorDoesNotStopWorkers(t *testing.T) {
	pool := NewWorkerPool(1, 0, 8)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(2)

	ok := false
	pool.Submit(&testJob{accountID: "acc-1", execute: func(ctx context.Context) error {
		defer wg.Done()
		return errors.New("boom")
	}})
	pool.Submit(&testJob{accountID: "acc-2", execute: func(ctx context.Context) error {
		defer wg.Done()
		ok = true
		return nil
	}})

	wg.Wait()
	pool.Shutdown()

	if !ok {
		t.Error("a failing job must not prevent later jobs from running")
	}
}

func TestWorkerPoolSubmitDropsWhenQueueFull(t *testing.T) {
	// No workers started: the queue fills and the next submit is dropped.
	pool := NewWorkerPool(0, 0, 1)

	if err := pool.Submit(&testJob{accountID: "acc-1"}); err != nil {
		t.Fatalf("first submit should queue: %v", err)
	}
	if err := pool.Submit(&testJob{accountID: "acc-2"}); err == nil {
		t.Error("expected an error when the queue is full")
	}
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	pool := NewWorkerPool(0, 0, 1)
	pool.cancel()

	if err := pool.Submit(&testJob{accountID: "acc-1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSchedulerTriggerNow(t *testing.T) {
	var mu sync.Mutex
	executed := false
	done := make(chan struct{})

	s := NewScheduler(Config{
		WorkerCount: 1,
		QueueSize:   4,
		JobProvider: func(ctx context.Context) ([]Job, error) {
			return []Job{&testJob{accountID: "acc-1", execute: func(ctx context.Context) error {
				mu.Lock()
				executed = true
				mu.Unlock()
				close(done)
				return nil
			}}}, nil
		},
	})
	s.pool.Start()
	defer s.Shutdown(time.Second)

	s.TriggerNow()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the triggered job")
	}

	mu.Lock()
	defer mu.Unlock()
	if !executed {
		t.Error("manual trigger should execute the provided job")
	}
}
