// Package repokit is the sql surface repos are written against, without a driver import
package repokit

import "hansard/internal/platform/store"

type (
	// Queryer runs statements on the pool or inside a transaction
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can open a transaction
	TxRunner = store.TxRunner

	// Rows is a result set
	Rows = store.Rows

	// Row is a single row
	Row = store.Row

	// CommandTag reports what a statement did
	CommandTag = store.CommandTag
)
