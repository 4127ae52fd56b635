// Package pg opens the pgx pool behind the store and traces the queries sent through it
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	perr "hansard/internal/platform/errors"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int    // queries at or over this are flagged slow; negative disables
	AppName  string // reported as application_name, shows up in pg_stat_activity
}

// PG is a pool plus the optional tracer every query is reported to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL and builds the pool. mut may adjust the parsed pool config last
func Open(ctx context.Context, cfg Config, tracer QueryTracer, mut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "pg: bad database url")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if mut != nil {
		mut(pcfg)
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "pg: create pool")
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Trace reports one finished statement to the tracer, if any
func (p *PG) Trace(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if p == nil || p.Tracer == nil {
		return
	}
	elapsed := time.Since(start)
	p.Tracer.OnQuery(ctx, QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsed.Microseconds(),
		Err:       err,
		Slow:      p.SlowMs >= 0 && elapsed >= time.Duration(p.SlowMs)*time.Millisecond,
	})
}

// Close closes the pool. Safe on nil
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
