package cypher

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/syssam/graphmap/dialect"
)

// Driver is a dialect.Driver backed by the neo4j bolt driver. Read
// statements run in read sessions; Exec and explicit transactions run in
// write sessions.
type Driver struct {
	drv      neo4j.DriverWithContext
	database string
}

// DriverOption configures the Driver.
type DriverOption func(*Driver)

// WithDatabase selects the database statements run against. The server's
// default database is used when unset.
func WithDatabase(name string) DriverOption {
	return func(d *Driver) {
		d.database = name
	}
}

// Open connects to a bolt endpoint with basic auth and returns a Driver.
func Open(uri, username, password string, opts ...DriverOption) (*Driver, error) {
	drv, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	return NewDriver(drv, opts...), nil
}

// NewDriver wraps an existing neo4j driver.
func NewDriver(drv neo4j.DriverWithContext, opts ...DriverOption) *Driver {
	d := &Driver{drv: drv}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return d.drv.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: d.database,
	})
}

// Exec executes a statement and discards its rows.
func (d *Driver) Exec(ctx context.Context, query string, params map[string]any) error {
	sess := d.session(ctx, neo4j.AccessModeWrite)
	defer sess.Close(ctx)
	res, err := sess.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// Query executes a statement and returns its rows in order.
func (d *Driver) Query(ctx context.Context, query string, params map[string]any) ([]dialect.Record, error) {
	sess := d.session(ctx, neo4j.AccessModeRead)
	defer sess.Close(ctx)
	res, err := sess.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dialect.Record, len(records))
	for i, rec := range records {
		out[i] = dialect.Record(rec.AsMap())
	}
	return out, nil
}

// Tx starts an explicit write transaction. Statements executed through it
// become visible atomically on Commit.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	sess := d.session(ctx, neo4j.AccessModeWrite)
	tx, err := sess.BeginTransaction(ctx)
	if err != nil {
		sess.Close(ctx)
		return nil, err
	}
	return &Tx{sess: sess, tx: tx}, nil
}

// Close closes the underlying connection pool.
func (d *Driver) Close() error {
	return d.drv.Close(context.Background())
}

// Tx is an explicit neo4j transaction implementing dialect.Tx.
type Tx struct {
	sess neo4j.SessionWithContext
	tx   neo4j.ExplicitTransaction
}

// Exec executes a statement within the transaction and discards its rows.
func (t *Tx) Exec(ctx context.Context, query string, params map[string]any) error {
	res, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// Query executes a statement within the transaction and returns its rows.
func (t *Tx) Query(ctx context.Context, query string, params map[string]any) ([]dialect.Record, error) {
	res, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dialect.Record, len(records))
	for i, rec := range records {
		out[i] = dialect.Record(rec.AsMap())
	}
	return out, nil
}

// Commit commits the transaction and releases its session.
func (t *Tx) Commit(ctx context.Context) error {
	defer t.sess.Close(ctx)
	return t.tx.Commit(ctx)
}

// Rollback rolls the transaction back and releases its session.
func (t *Tx) Rollback(ctx context.Context) error {
	defer t.sess.Close(ctx)
	return t.tx.Rollback(ctx)
}
