package scheduler

import "context"

// Job is a unit of work processed by the worker pool. Jobs are keyed by
// account: the cycle engine serializes per account internally, so the pool
// can run any mix of jobs concurrently without extra coordination.
type Job interface {
	// Execute runs the job. The context carries the worker's timeout.
	Execute(ctx context.Context) error

	// AccountID returns the account this job operates on.
	AccountID() string

	// Description returns a human-readable description for logging.
	Description() string
}
