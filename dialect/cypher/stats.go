package cypher

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/graphmap/dialect"
)

// QueryStats holds statement execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of read statements executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of write statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of statement errors.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of statement statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the average statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// SlowQueryHook is called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, params map[string]any, duration time.Duration)

// StatsDriver wraps a dialect.Driver with statement statistics collection
// and slow-query detection. Transactions started through it are
// instrumented too.
type StatsDriver struct {
	dialect.Driver
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the default slog logger. This is
// a convenience wrapper around WithSlowQueryHook.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(_ context.Context, query string, params map[string]any, duration time.Duration) {
		slog.Warn("slow statement detected", "duration", duration, "query", query, "params", params)
	})
}

// NewStatsDriver wraps a driver with statistics collection.
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns a snapshot of the collected statistics.
func (s *StatsDriver) Stats() StatsSnapshot {
	return s.stats.Stats()
}

// Reset resets the collected statistics.
func (s *StatsDriver) Reset() {
	s.stats.Reset()
}

func (s *StatsDriver) observe(ctx context.Context, query string, params map[string]any, start time.Time, err error) {
	elapsed := time.Since(start)
	s.stats.TotalDuration.Add(int64(elapsed))
	if err != nil {
		s.stats.Errors.Add(1)
	}
	if elapsed < s.slowThreshold {
		return
	}
	s.stats.SlowQueries.Add(1)
	s.mu.RLock()
	hook := s.slowHook
	s.mu.RUnlock()
	if hook != nil {
		hook(ctx, query, params, elapsed)
	}
}

// Exec executes a write statement, recording duration and errors.
func (s *StatsDriver) Exec(ctx context.Context, query string, params map[string]any) error {
	s.stats.TotalExecs.Add(1)
	start := time.Now()
	err := s.Driver.Exec(ctx, query, params)
	s.observe(ctx, query, params, start, err)
	return err
}

// Query executes a read statement, recording duration and errors.
func (s *StatsDriver) Query(ctx context.Context, query string, params map[string]any) ([]dialect.Record, error) {
	s.stats.TotalQueries.Add(1)
	start := time.Now()
	records, err := s.Driver.Query(ctx, query, params)
	s.observe(ctx, query, params, start, err)
	return records, err
}

// Tx starts a transaction whose statements are counted like the driver's.
func (s *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := s.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, s: s}, nil
}

type statsTx struct {
	dialect.Tx
	s *StatsDriver
}

func (t *statsTx) Exec(ctx context.Context, query string, params map[string]any) error {
	t.s.stats.TotalExecs.Add(1)
	start := time.Now()
	err := t.Tx.Exec(ctx, query, params)
	t.s.observe(ctx, query, params, start, err)
	return err
}

func (t *statsTx) Query(ctx context.Context, query string, params map[string]any) ([]dialect.Record, error) {
	t.s.stats.TotalQueries.Add(1)
	start := time.Now()
	records, err := t.Tx.Query(ctx, query, params)
	t.s.observe(ctx, query, params, start, err)
	return records, err
}
