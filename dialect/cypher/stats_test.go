package cypher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphmap/dialect"
	"github.com/syssam/graphmap/dialect/cypher"
)

// fakeDriver records every statement routed through it and returns canned
// results.
type fakeDriver struct {
	execs   []string
	queries []string
	rows    []dialect.Record
	err     error
	delay   time.Duration
}

func (d *fakeDriver) Exec(_ context.Context, query string, _ map[string]any) error {
	time.Sleep(d.delay)
	d.execs = append(d.execs, query)
	return d.err
}

func (d *fakeDriver) Query(_ context.Context, query string, _ map[string]any) ([]dialect.Record, error) {
	time.Sleep(d.delay)
	d.queries = append(d.queries, query)
	return d.rows, d.err
}

func (d *fakeDriver) Tx(context.Context) (dialect.Tx, error) {
	return &fakeTx{d: d}, nil
}

func (d *fakeDriver) Close() error { return nil }

type fakeTx struct {
	d          *fakeDriver
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, query string, params map[string]any) error {
	return t.d.Exec(ctx, query, params)
}

func (t *fakeTx) Query(ctx context.Context, query string, params map[string]any) ([]dialect.Record, error) {
	return t.d.Query(ctx, query, params)
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

func TestStatsDriverCounters(t *testing.T) {
	t.Parallel()

	fake := &fakeDriver{rows: []dialect.Record{{"n": 1}}}
	drv := cypher.NewStatsDriver(fake)
	ctx := context.Background()

	rows, err := drv.Query(ctx, "RETURN 1", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.NoError(t, drv.Exec(ctx, "MERGE (n)", nil))
	require.NoError(t, drv.Exec(ctx, "MERGE (m)", nil))

	stats := drv.Stats()
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, int64(2), stats.TotalExecs)
	assert.Equal(t, int64(0), stats.Errors)
	assert.Equal(t, int64(0), stats.SlowQueries)

	drv.Reset()
	assert.Equal(t, int64(0), drv.Stats().TotalExecs)
}

func TestStatsDriverErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeDriver{err: errors.New("boom")}
	drv := cypher.NewStatsDriver(fake)

	require.Error(t, drv.Exec(context.Background(), "MERGE (n)", nil))
	assert.Equal(t, int64(1), drv.Stats().Errors)
}

func TestStatsDriverSlowHook(t *testing.T) {
	t.Parallel()

	var (
		slowQuery string
		slowDur   time.Duration
	)
	fake := &fakeDriver{delay: 5 * time.Millisecond}
	drv := cypher.NewStatsDriver(fake,
		cypher.WithSlowThreshold(time.Millisecond),
		cypher.WithSlowQueryHook(func(_ context.Context, query string, _ map[string]any, d time.Duration) {
			slowQuery = query
			slowDur = d
		}),
	)

	require.NoError(t, drv.Exec(context.Background(), "MERGE (n)", nil))
	assert.Equal(t, int64(1), drv.Stats().SlowQueries)
	assert.Equal(t, "MERGE (n)", slowQuery)
	assert.GreaterOrEqual(t, slowDur, time.Millisecond)
}

func TestStatsDriverTx(t *testing.T) {
	t.Parallel()

	fake := &fakeDriver{}
	drv := cypher.NewStatsDriver(fake)

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "MERGE (n)", nil))
	_, err = tx.Query(context.Background(), "RETURN 1", nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))

	stats := drv.Stats()
	assert.Equal(t, int64(1), stats.TotalExecs)
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, []string{"MERGE (n)"}, fake.execs)
	assert.Equal(t, []string{"RETURN 1"}, fake.queries)
}

func TestStatsSnapshotAvgDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), cypher.StatsSnapshot{}.AvgDuration())
	s := cypher.StatsSnapshot{TotalQueries: 2, TotalExecs: 2, TotalDuration: 4 * time.Second}
	assert.Equal(t, time.Second, s.AvgDuration())
}
