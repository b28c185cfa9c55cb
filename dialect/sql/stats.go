package sql

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/pgmodel/dialect"
)

// DefaultSlowThreshold is the duration above which a statement counts as slow.
const DefaultSlowThreshold = 100 * time.Millisecond

// QueryStats counts the statements run through a StatsDriver. It is safe
// for concurrent use.
type QueryStats struct {
	queries atomic.Int64
	execs   atomic.Int64
	failed  atomic.Int64
	slow    atomic.Int64
	elapsed atomic.Int64 // nanoseconds

	mu     sync.Mutex
	byVerb map[string]int64
}

func (s *QueryStats) add(verb string, rows bool, d time.Duration, err error, slow bool) {
	if rows {
		s.queries.Add(1)
	} else {
		s.execs.Add(1)
	}
	s.elapsed.Add(int64(d))
	if err != nil {
		s.failed.Add(1)
	}
	if slow {
		s.slow.Add(1)
	}
	s.mu.Lock()
	if s.byVerb == nil {
		s.byVerb = make(map[string]int64)
	}
	s.byVerb[verb]++
	s.mu.Unlock()
}

// Stats returns a copy of the current counters.
func (s *QueryStats) Stats() StatsSnapshot {
	snap := StatsSnapshot{
		Queries: s.queries.Load(),
		Execs:   s.execs.Load(),
		Failed:  s.failed.Load(),
		Slow:    s.slow.Load(),
		Elapsed: time.Duration(s.elapsed.Load()),
	}
	s.mu.Lock()
	if len(s.byVerb) > 0 {
		snap.ByVerb = maps.Clone(s.byVerb)
	}
	s.mu.Unlock()
	return snap
}

// Reset zeroes every counter.
func (s *QueryStats) Reset() {
	s.queries.Store(0)
	s.execs.Store(0)
	s.failed.Store(0)
	s.slow.Store(0)
	s.elapsed.Store(0)
	s.mu.Lock()
	s.byVerb = nil
	s.mu.Unlock()
}

// StatsSnapshot is a point-in-time copy of QueryStats. ByVerb counts
// statements by their leading keyword (SELECT, INSERT, ALTER, ...).
type StatsSnapshot struct {
	Queries int64
	Execs   int64
	Failed  int64
	Slow    int64
	Elapsed time.Duration
	ByVerb  map[string]int64
}

// Total returns the number of statements run.
func (s StatsSnapshot) Total() int64 { return s.Queries + s.Execs }

// AvgQueryDuration returns the mean statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	if s.Total() == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Total())
}

func (s StatsSnapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "queries=%d execs=%d failed=%d slow=%d elapsed=%s avg=%s",
		s.Queries, s.Execs, s.Failed, s.Slow, s.Elapsed, s.AvgQueryDuration())
	for _, verb := range slices.Sorted(maps.Keys(s.ByVerb)) {
		fmt.Fprintf(&sb, " %s=%d", strings.ToLower(verb), s.ByVerb[verb])
	}
	return sb.String()
}

// statementVerb returns the upper-cased first keyword of query.
func statementVerb(query string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	if verb == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(verb)
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver is a dialect.Driver that times and counts every statement.
type StatsDriver struct {
	dialect.Driver
	stats     QueryStats
	threshold atomic.Int64
	onSlow    SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the slow statement threshold. A negative value
// marks every statement as slow.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold.Store(int64(d)) }
}

// WithSlowQueryHook sets the function called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.onSlow = hook }
}

// WithSlowQueryLog logs slow statements at warn level. A nil logger means
// slog.Default().
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.WarnContext(ctx, "pgmodel: slow statement", "duration", duration, "sql", query, "args", args)
	})
}

// NewStatsDriver wraps drv with statistics collection.
//
//	drv, _ := sql.Open("postgres", dsn)
//	stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond))
//	users := pgmodel.New("users", nil, pgmodel.WithDriver(stats))
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv}
	s.threshold.Store(int64(DefaultSlowThreshold))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats { return &d.stats }

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	return time.Duration(d.threshold.Load())
}

// SetSlowThreshold changes the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.threshold.Store(int64(threshold))
}

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.observe(ctx, query, args, true, time.Since(start), err)
	return err
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.observe(ctx, query, args, false, time.Since(start), err)
	return err
}

func (d *StatsDriver) observe(ctx context.Context, query string, args any, rows bool, elapsed time.Duration, err error) {
	slow := elapsed > d.SlowThreshold()
	d.stats.add(statementVerb(query), rows, elapsed, err, slow)
	if slow && d.onSlow != nil {
		list, _ := args.([]any)
		d.onSlow(ctx, query, list, elapsed)
	}
}

// DebugDriver is a dialect.Driver that logs every statement at debug
// level before running it.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to.
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return func(d *DebugDriver) { d.logger = logger }
}

// NewDebugDriver wraps drv with statement logging. Without options it
// logs to slog.Default().
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{Driver: drv}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Query implements dialect.ExecQuerier.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "pgmodel: query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "pgmodel: exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
)
