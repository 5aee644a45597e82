// Package poller implements a fixed-interval, fixed-count polling loop
// for asynchronous jobs on a remote processing service.
//
// A job is submitted once, then its status endpoint is queried up to a
// bounded number of times with a constant sleep between attempts. There
// is deliberately no backoff and no jitter: the fixed policy is the
// contract. A single query that fails transiently (network error,
// malformed response) consumes an attempt and the loop continues; the
// loop does not distinguish "service still working" from "this
// particular query failed".
package poller

import (
	"context"
	"time"
)

// Status is the lifecycle state a remote job reports.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusUnknown  Status = "unknown"
)

// Terminal reports whether the status ends the poll loop.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Job is a unit of remote asynchronous work. The ID is assigned by the
// remote service at submission and never changes afterwards.
type Job struct {
	ID     string
	Status Status
}

// Config holds the polling policy.
//
// Invalid values are normalized before use:
//   - MaxAttempts < 1 becomes 1 (at least one query)
//   - Interval <= 0 becomes 1ms
type Config struct {
	// Interval is the fixed sleep between consecutive status queries.
	Interval time.Duration

	// MaxAttempts is the maximum number of status queries issued before
	// the loop gives up with StateTimeout.
	MaxAttempts int
}

// normalize ensures all Config fields have valid values.
func (c *Config) normalize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Interval <= 0 {
		c.Interval = time.Millisecond
	}
}

// Update is one status report from the remote service.
type Update struct {
	Status Status

	// Progress is normalized to [0,1]; 1 means complete. Informational
	// only: Status decides terminality.
	Progress float64

	// Result carries the job output once Status is StatusComplete.
	Result string

	// Detail carries the service's failure message when Status is
	// StatusFailed.
	Detail string
}

// StatusFunc queries the remote service once for the given job ID.
// An error return is treated as a transient poll failure.
type StatusFunc func(ctx context.Context, jobID string) (Update, error)

// State classifies how a poll loop ended.
type State int

const (
	// StateSuccess means the service reported completion; Result is set.
	StateSuccess State = iota
	// StateFailed means the service explicitly reported job failure.
	StateFailed
	// StateTimeout means the attempt budget ran out with no terminal status.
	StateTimeout
)

// String returns the state name for diagnostics output.
func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	case StateTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the final result of a poll loop.
type Outcome struct {
	State    State
	Result   string // set when State == StateSuccess
	Detail   string // set when State == StateFailed
	Attempts int    // status queries actually issued

	// LastErr is the error from the final attempt when the loop timed
	// out on a transient failure. Nil unless State == StateTimeout and
	// the last query errored.
	LastErr error
}

// Poll queries the job's status until a terminal status arrives or the
// attempt budget is exhausted, sleeping cfg.Interval between attempts
// (not before the first). Context cancellation interrupts the sleep and
// returns ctx.Err.
//
// The returned Outcome is always meaningful when err is nil; err is
// non-nil only for context cancellation.
func Poll(ctx context.Context, job Job, cfg Config, query StatusFunc) (Outcome, error) {
	cfg.normalize()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, cfg.Interval); err != nil {
				return Outcome{State: StateTimeout, Attempts: attempt - 1, LastErr: lastErr}, err
			}
		}

		update, err := query(ctx, job.ID)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{State: StateTimeout, Attempts: attempt, LastErr: err}, ctx.Err()
			}
			// Transient: consume the attempt and keep going.
			lastErr = err
			continue
		}
		lastErr = nil

		switch update.Status {
		case StatusComplete:
			return Outcome{State: StateSuccess, Result: update.Result, Attempts: attempt}, nil
		case StatusFailed:
			return Outcome{State: StateFailed, Detail: update.Detail, Attempts: attempt}, nil
		}
	}

	return Outcome{State: StateTimeout, Attempts: cfg.MaxAttempts, LastErr: lastErr}, nil
}

// sleep blocks for d or until ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
