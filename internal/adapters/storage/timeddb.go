package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tunelingo/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)
var _ SQLDB = (*TimedDB)(nil)

// DefaultSlowQueryMs is the threshold above which a statement logs at WARN.
const DefaultSlowQueryMs = 50

// TimedDB wraps a *sql.DB so every statement is timed, logged when
// slow, and fed to the perf collector grouped by SQL verb. It satisfies
// SQLDB and drops into any store constructor.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// NewTimedDB wraps a *sql.DB with timing instrumentation. The slow
// threshold comes from TUNELINGO_SLOW_QUERY_MS, read once here.
// PRE: db is a valid database connection
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	threshold := float64(DefaultSlowQueryMs)
	if v := os.Getenv("TUNELINGO_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threshold = float64(n)
		}
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// statementLabel groups statements by their leading SQL keyword, so the
// admin report reads "sqlite SELECT" rather than one entry per query.
func statementLabel(query string) string {
	trimmed := strings.TrimSpace(query)
	if i := strings.IndexAny(trimmed, " \t\n"); i > 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "sqlite"
	}
	return "sqlite " + strings.ToUpper(trimmed)
}

func (t *TimedDB) observe(label string, start time.Time) {
	millis := float64(time.Since(start).Microseconds()) / 1000.0

	if millis >= t.threshold {
		slog.Warn("slow_query", "statement", label, "duration_ms", millis)
	} else {
		slog.Debug("query", "statement", label, "duration_ms", millis)
	}

	if t.collector != nil {
		t.collector.Observe(perf.Sample{
			Origin: perf.OriginQuery,
			Label:  label,
			Millis: millis,
			At:     start,
		})
	}
}

// ExecContext runs a statement and records its timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(statementLabel(query), start)
	return result, err
}

// QueryContext runs a query and records its timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(statementLabel(query), start)
	return rows, err
}

// QueryRowContext runs a single-row query and records its timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(statementLabel(query), start)
	return row
}

// BeginTx opens a transaction and records the open itself. Statements
// inside the transaction run on the raw *sql.Tx and are not timed
// individually.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("sqlite BEGIN", start)
	return tx, err
}
