package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hansard/internal/platform/store/pg"
)

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 1 {
		if p, ok := dest[0].(*int); ok {
			*p = 1
		}
	}
	return nil
}

// fakeRows embeds pgx.Rows for the methods the adapter never calls
type fakeRows struct {
	pgx.Rows
	cols []string
	n    int
}

func (r *fakeRows) Next() bool {
	r.n--
	return r.n >= 0
}

func (r *fakeRows) Scan(...any) error { return nil }
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}

type fakeQ struct {
	execErr error
	rowErr  error
	sql     []string
}

func (f *fakeQ) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	return pgconn.NewCommandTag("INSERT 0 3"), f.execErr
}

func (f *fakeQ) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sql = append(f.sql, sql)
	return &fakeRows{cols: []string{"sitting_date", "speech_seq"}, n: 2}, nil
}

func (f *fakeQ) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sql = append(f.sql, sql)
	return fakeRow{err: f.rowErr}
}

type events struct{ got []pg.QueryEvent }

func (e *events) OnQuery(_ context.Context, ev pg.QueryEvent) { e.got = append(e.got, ev) }

func TestQuerier_TracesEveryStatement(t *testing.T) {
	ctx := context.Background()
	ev := &events{}
	fq := &fakeQ{}
	q := querier{q: fq, p: &pg.PG{Tracer: ev, SlowMs: -1}}

	ct, err := q.Exec(ctx, "insert into hansard_attendance values ($1)", 1)
	if err != nil || ct.RowsAffected() != 3 || ct.String() != "INSERT 0 3" {
		t.Fatalf("Exec = %v, %v", ct, err)
	}

	rs, err := q.Query(ctx, "select sitting_date, speech_seq from hansard_speeches")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	cols := rs.Columns()
	n := 0
	for rs.Next() {
		n++
	}
	rs.Close()
	if n != 2 || len(cols) != 2 || cols[1] != "speech_seq" {
		t.Fatalf("rows = %d cols = %v", n, cols)
	}

	var one int
	if err := q.QueryRow(ctx, "select 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("QueryRow = %d, %v", one, err)
	}

	if len(ev.got) != 3 {
		t.Fatalf("events = %d, want 3", len(ev.got))
	}
	if ev.got[2].SQL != "select 1" || ev.got[2].Err != nil {
		t.Fatalf("last event = %+v", ev.got[2])
	}
}

func TestQuerier_ScanErrorReachesTracer(t *testing.T) {
	ev := &events{}
	boom := errors.New("no rows")
	q := querier{q: &fakeQ{rowErr: boom}, p: &pg.PG{Tracer: ev}}

	var one int
	if err := q.QueryRow(context.Background(), "select 1").Scan(&one); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(ev.got) != 1 || !errors.Is(ev.got[0].Err, boom) {
		t.Fatalf("events = %+v", ev.got)
	}
}

func TestQuerier_NoTracer(t *testing.T) {
	q := querier{q: &fakeQ{execErr: errors.New("x")}, p: &pg.PG{}}
	if _, err := q.Exec(context.Background(), "delete from hansard_speeches"); err == nil {
		t.Fatal("exec error should surface")
	}
}
