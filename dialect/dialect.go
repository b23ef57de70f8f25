package dialect

import "context"

// Record is one result row: a string-keyed value map matching the compiled
// statement's RETURN shape.
type Record map[string]any

// ExecQuerier executes compiled statements. Exec is for statements whose
// results are discarded (the write path); Query returns ordered rows.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows.
	Exec(ctx context.Context, query string, params map[string]any) error

	// Query executes a statement and returns its rows in order.
	Query(ctx context.Context, query string, params map[string]any) ([]Record, error)
}

// Driver is the interface executed statements flow through.
type Driver interface {
	ExecQuerier

	// Tx starts and returns a transaction.
	Tx(ctx context.Context) (Tx, error)

	// Close closes the underlying connection.
	Close() error
}

// Tx is a transaction scope. Statements executed through it become visible
// atomically on Commit.
type Tx interface {
	ExecQuerier

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
