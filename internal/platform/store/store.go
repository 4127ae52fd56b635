// Package store is the sql seam repos run against. Postgres is optional: a Store with a
// nil PG is valid and callers decide what "no database" means for them
package store

import (
	"context"

	"hansard/internal/platform/logger"
)

// Store holds the opened backends. The zero value is safe and does nothing
type Store struct {
	Log logger.Logger

	// PG is nil when postgres is disabled
	PG TxRunner
}

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Open builds a Store, opening postgres when cfg.PG.Enabled
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if !cfg.PG.Enabled {
		return s, nil
	}
	a, err := openPG(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	s.PG = a
	return s, nil
}

// Close closes whatever Open opened. Safe on nil
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
