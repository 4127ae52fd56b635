package guardrails

import (
	"context"
	"errors"
	"time"

	"hansard/internal/modkit/repokit"
	"hansard/internal/platform/store"
)

// ErrLeaseHeld signals another runner owns the day already
var ErrLeaseHeld = errors.New("ingest: day lease already held")

// LeaseFunc claims day and runs do while holding it
type LeaseFunc func(ctx context.Context, day time.Time, do func(context.Context) error) error

// MakeDayLease returns a LeaseFunc backed by the ingest_day_leases table. A claim older
// than ttl is stale and may be taken over, so a crashed runner does not pin a day forever.
// The claim is released when do returns, whatever the outcome, so a later run retries
// failed days
func MakeDayLease(db repokit.TxRunner, owner string, ttl time.Duration) LeaseFunc {
	return func(ctx context.Context, day time.Time, do func(context.Context) error) error {
		d := day.UTC().Format(time.DateOnly)

		var claimed bool
		err := db.Tx(ctx, func(q store.RowQuerier) error {
			rows, err := q.Query(ctx, `
				insert into ingest_day_leases (sitting_date, owner, claimed_at)
				values ($1::date, $2, now())
				on conflict (sitting_date) do update
					set owner = excluded.owner, claimed_at = excluded.claimed_at
					where ingest_day_leases.claimed_at < now() - make_interval(secs => $3)
				returning true
			`, d, owner, ttl.Seconds())
			if err != nil {
				return err
			}
			defer rows.Close()
			if rows.Next() {
				claimed = true
			}
			return rows.Err()
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld
		}

		defer func() {
			// release on a fresh context; ctx may already be cancelled
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_, _ = db.Exec(rctx, `delete from ingest_day_leases where sitting_date = $1::date and owner = $2`, d, owner)
		}()
		return do(ctx)
	}
}
