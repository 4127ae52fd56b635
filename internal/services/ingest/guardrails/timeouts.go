// Package guardrails holds cross cutting safety helpers for ingest
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for a single day of work.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Day is the overall time budget for one sitting day
	Day time.Duration

	// Fetch caps the network fetch step
	Fetch time.Duration

	// DB caps the upsert step
	DB time.Duration

	// AI caps the summary calls
	AI time.Duration
}

// WithDay returns a context limited by the day budget without extending any parent deadline.
// if Day is zero it returns a cancelable child that simply inherits the parent deadline
func WithDay(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Day)
}

// ForFetch returns a sub context for the fetch phase bounded by Fetch and any remaining parent budget
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForDB returns a sub context for the db phase bounded by DB and any remaining parent budget
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// ForAI returns a sub context for summary calls bounded by AI and any remaining parent budget
func ForAI(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.AI)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent's remainder. Never extends the parent
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
