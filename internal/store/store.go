// Package store implements PinPoint's PostgreSQL persistence layer.
//
// Queries runs against any pgx query surface (the shared pool or a
// transaction), so transactional use cases thread one pgx.Tx through every
// read and write via WithTx. The notification engine depends on this:
// its writes must commit or roll back with the triggering mutation.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Queries bundles all store operations over one query surface.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given query surface.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
