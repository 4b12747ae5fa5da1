package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql that the store queries need. Both
// *sql.DB and *sql.Tx satisfy it, so the issuance coordinator can run the
// same queries inside a single transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
