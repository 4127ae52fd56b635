package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/testkit"
)

func TestOpen_BadURL(t *testing.T) {
	_, err := Open(context.Background(), Config{URL: "://bad"}, nil, nil)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpen_PoolError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("refused")
	})

	_, err := Open(context.Background(), Config{URL: "postgres://u:p@db:5432/hansard"}, nil, nil)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpen_AppliesConfig(t *testing.T) {
	testkit.Serial(t)

	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = c
		return &pgxpool.Pool{}, nil
	})

	cfg := Config{URL: "postgres://u:p@db:5432/hansard", MaxConns: 6, SlowMs: 250, AppName: "hansard-ingest"}
	p, err := Open(context.Background(), cfg, nil, func(c *pgxpool.Config) { c.MaxConnIdleTime = time.Minute })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if seen.MaxConns != 6 || seen.MaxConnIdleTime != time.Minute {
		t.Fatalf("pool config = %d conns, idle %s", seen.MaxConns, seen.MaxConnIdleTime)
	}
	if seen.ConnConfig.RuntimeParams["application_name"] != "hansard-ingest" {
		t.Fatalf("application_name = %q", seen.ConnConfig.RuntimeParams["application_name"])
	}
	if p.SlowMs != 250 {
		t.Fatalf("SlowMs = %d", p.SlowMs)
	}
}

type recordTracer struct{ got []QueryEvent }

func (r *recordTracer) OnQuery(_ context.Context, ev QueryEvent) { r.got = append(r.got, ev) }

func TestTrace_Slow(t *testing.T) {
	rec := &recordTracer{}
	p := &PG{Tracer: rec, SlowMs: 0}
	p.Trace(context.Background(), "select 1", nil, time.Now(), nil)

	p.SlowMs = -1
	p.Trace(context.Background(), "select 2", nil, time.Now().Add(-time.Hour), nil)

	if len(rec.got) != 2 || !rec.got[0].Slow || rec.got[1].Slow {
		t.Fatalf("events = %+v", rec.got)
	}

	var none *PG
	none.Trace(context.Background(), "select 3", nil, time.Now(), nil)
	none.Close()
	(&PG{}).Close()
}
