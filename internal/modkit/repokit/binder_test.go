package repokit

import (
	"context"
	"testing"
)

type nopQ struct{}

func (nopQ) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }
func (nopQ) Query(context.Context, string, ...any) (Rows, error)      { return nil, nil }
func (nopQ) QueryRow(context.Context, string, ...any) Row             { return nil }

type speechRepo struct{ q Queryer }

func TestBindFunc(t *testing.T) {
	var b Binder[*speechRepo] = BindFunc[*speechRepo](func(q Queryer) *speechRepo { return &speechRepo{q: q} })

	q := nopQ{}
	r := b.Bind(q)
	if r == nil || r.q != q {
		t.Fatalf("Bind did not carry the queryer: %+v", r)
	}
	if b.Bind(nil).q != nil {
		t.Fatal("nil queryer binds as nil")
	}
}
