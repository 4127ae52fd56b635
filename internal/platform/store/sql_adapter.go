package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/store/pg"
)

// pgxQuerier is the part of pgx both *pgxpool.Pool and pgx.Tx provide
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier runs statements against pool or tx and reports each to the tracer
type querier struct {
	q pgxQuerier
	p *pg.PG
}

func (x querier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := x.q.Exec(ctx, sql, args...)
	x.p.Trace(ctx, sql, args, start, err)
	return tag{ct}, err
}

func (x querier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := x.q.Query(ctx, sql, args...)
	x.p.Trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

// QueryRow traces once Scan returns, since pgx defers the error until then
func (x querier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return row{r: x.q.QueryRow(ctx, sql, args...), after: func(err error) {
		x.p.Trace(ctx, sql, args, start, err)
	}}
}

// pgAdapter is the pool-backed TxRunner handed to repos
type pgAdapter struct {
	p *pg.PG
	querier
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{p: p, querier: querier{q: p.Pool, p: p}}
}

// Ping answers the readiness probe
func (a *pgAdapter) Ping(ctx context.Context) error {
	var one int
	return a.QueryRow(ctx, "select 1").Scan(&one)
}

func (a *pgAdapter) Close() error {
	a.p.Close()
	return nil
}

// Tx commits when fn returns nil and rolls back on error or panic
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) (err error) {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "pg: begin")
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()
	if err := fn(querier{q: tx, p: a.p}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "pg: commit")
	}
	return nil
}

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type rows struct{ r pgx.Rows }

func (x rows) Next() bool            { return x.r.Next() }
func (x rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rows) Err() error            { return x.r.Err() }
func (x rows) Close()                { x.r.Close() }

func (x rows) Columns() []string {
	fds := x.r.FieldDescriptions()
	out := make([]string, len(fds))
	for i, f := range fds {
		out[i] = f.Name
	}
	return out
}

type tag struct{ t pgconn.CommandTag }

func (t tag) String() string      { return t.t.String() }
func (t tag) RowsAffected() int64 { return t.t.RowsAffected() }
