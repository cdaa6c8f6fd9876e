package core

// export_limiter.go bounds how many full-table exports run at once.
//
// An export sorts and filters every row of a table and writes them all, so
// a burst of exports can hold many copies of large tables in memory. When
// all slots are taken, new exports wait up to maxWait before failing with
// ErrTooManyExports.
//
// WaitForDrain supports graceful shutdown by blocking until running exports
// complete.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyExports is returned when all export slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyExports = errors.New("too many concurrent exports, please try again later")

// DefaultMaxConcurrentExports is the default limit for parallel exports.
const DefaultMaxConcurrentExports = 4

// DefaultExportWait is how long to wait for a slot before rejecting.
const DefaultExportWait = 10 * time.Second

// ExportLimiter controls concurrent export processing.
type ExportLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewExportLimiter creates a limiter that allows at most maxConcurrent
// simultaneous exports. Non-positive arguments select the defaults.
func NewExportLimiter(maxConcurrent int, maxWait time.Duration) *ExportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExports
	}
	if maxWait <= 0 {
		maxWait = DefaultExportWait
	}
	return &ExportLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire waits for an export slot.
// Returns ctx.Err() if ctx ends first, ErrTooManyExports if maxWait expires.
// The caller MUST call Release when the export completes.
func (l *ExportLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyExports
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *ExportLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot. Call exactly once per successful Acquire or TryAcquire.
func (l *ExportLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of running exports.
func (l *ExportLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the maximum allowed concurrent exports.
func (l *ExportLimiter) MaxConcurrent() int { return l.max }

// WaitForDrain blocks until no export is running or ctx is cancelled.
func (l *ExportLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ExportLimiterStatus is a snapshot of the limiter's state.
type ExportLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *ExportLimiter) Status() ExportLimiterStatus {
	active := l.ActiveCount()
	return ExportLimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
