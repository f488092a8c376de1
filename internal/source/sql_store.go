package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/schema"
)

// sqliteTimeLayout keeps stored SQLite timestamps fixed-width so that text
// comparison orders them chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// runColumns are read and written in this order.
var runColumns = []schema.Column{
	schema.ColFlowName,
	schema.ColFlowOwner,
	schema.ColStartedAt,
	schema.ColCompletedAt,
	schema.ColTaskStatus,
	schema.ColTriggerType,
}

// SQLStore reads and writes the flow_run_history table.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	opts    FetchOptions
	now     func() time.Time
}

var _ contract.RunStore = &SQLStore{} // Compile-time check

// OpenSQLStore connects to the run history database. An empty connStr on
// SQLite uses the default local database file.
func OpenSQLStore(backend schema.DatabaseBackend, connStr string, opts FetchOptions) (*SQLStore, error) {
	db, err := openDB(context.Background(), backend, connStr)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, backend: backend, opts: opts, now: time.Now}, nil
}

// Name returns the backend name.
func (s *SQLStore) Name() string {
	return string(s.backend)
}

// Fetch returns runs started within the lookback window, newest first.
func (s *SQLStore) Fetch(ctx context.Context) (*schema.Batch, error) {
	query, args := s.fetchQuery()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", runHistoryTable, err)
	}
	defer func() { _ = rows.Close() }()

	batch := schema.NewBatch(runColumns...)
	for rows.Next() {
		var flow, owner, status, trigger sql.NullString
		var started, completed any
		if err := rows.Scan(&flow, &owner, &started, &completed, &status, &trigger); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		batch.Append(schema.Record{
			schema.ColFlowName:    nullString(flow),
			schema.ColFlowOwner:   nullString(owner),
			schema.ColStartedAt:   started,
			schema.ColCompletedAt: completed,
			schema.ColTaskStatus:  nullString(status),
			schema.ColTriggerType: nullString(trigger),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return batch, nil
}

// fetchQuery builds the lookback and owner filtered SELECT.
func (s *SQLStore) fetchQuery() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT flowname, flowowner, datetimestarted, datetimecompleted, taskstatus, triggertype FROM ")
	sb.WriteString(runHistoryTable)

	var conds []string
	var args []any
	if s.opts.Lookback > 0 {
		args = append(args, s.timeArg(s.now().Add(-s.opts.Lookback)))
		conds = append(conds, "datetimestarted >= "+placeholder(s.backend, len(args)))
	}
	if len(s.opts.Owners) > 0 {
		marks := make([]string, len(s.opts.Owners))
		for i, owner := range s.opts.Owners {
			args = append(args, owner)
			marks[i] = placeholder(s.backend, len(args))
		}
		conds = append(conds, "flowowner IN ("+strings.Join(marks, ", ")+")")
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY datetimestarted DESC")
	return sb.String(), args
}

// Insert writes runs in one transaction. Rows without a flow name, owner,
// parseable start time or status are skipped.
func (s *SQLStore) Insert(ctx context.Context, runs *schema.Batch) (int, error) {
	if runs.Empty() {
		return 0, nil
	}
	marks := make([]string, len(runColumns))
	for i := range runColumns {
		marks[i] = placeholder(s.backend, i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (flowname, flowowner, datetimestarted, datetimecompleted, taskstatus, triggertype) VALUES (%s)",
		runHistoryTable, strings.Join(marks, ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, r := range runs.Rows {
		flow, owner, status := r.String(schema.ColFlowName), r.String(schema.ColFlowOwner), r.String(schema.ColTaskStatus)
		started, ok := schema.AsTime(r[schema.ColStartedAt])
		if flow == "" || owner == "" || status == "" || !ok {
			continue
		}
		var completed any
		if t, ok := schema.AsTime(r[schema.ColCompletedAt]); ok {
			completed = s.timeArg(t)
		}
		var trigger any
		if tt := r.String(schema.ColTriggerType); tt != "" {
			trigger = tt
		}
		if _, err := stmt.ExecContext(ctx, flow, owner, s.timeArg(started), completed, status, trigger); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to insert run for %q: %w", flow, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit runs: %w", err)
	}
	return inserted, nil
}

// GetStatus reports the schema version and run history statistics.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.SourceStatus, error) {
	status := schema.SourceStatus{Backend: string(s.backend)}
	if err := s.db.PingContext(ctx); err != nil {
		return status, fmt.Errorf("failed to ping %s: %w", s.backend, err)
	}
	status.Connected = true
	status.SchemaVersion, status.Dirty = s.schemaVersion(ctx)

	query := fmt.Sprintf(
		"SELECT COUNT(*), COUNT(DISTINCT flowname), MIN(datetimestarted), MAX(datetimestarted) FROM %s",
		runHistoryTable,
	)
	var oldest, latest any
	err := s.db.QueryRowContext(ctx, query).Scan(&status.TotalRuns, &status.DistinctFlows, &oldest, &latest)
	if err != nil {
		return status, fmt.Errorf("failed to read %s stats: %w. Run 'runmatrix source migrate' first", runHistoryTable, err)
	}
	if t, ok := schema.AsTime(oldest); ok {
		status.OldestRunTime = t
	}
	if t, ok := schema.AsTime(latest); ok {
		status.LatestRunTime = t
	}
	return status, nil
}

// schemaVersion reads the migration version. A missing migrations table reads as version 0.
func (s *SQLStore) schemaVersion(ctx context.Context) (uint, bool) {
	var version int64
	var dirty bool
	query := fmt.Sprintf("SELECT version, dirty FROM %s LIMIT 1", migrationsTable)
	if err := s.db.QueryRowContext(ctx, query).Scan(&version, &dirty); err != nil || version < 0 {
		return 0, false
	}
	return uint(version), dirty
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// timeArg converts a timestamp into the bind value the backend stores.
func (s *SQLStore) timeArg(t time.Time) any {
	t = t.UTC()
	if s.backend == schema.SQLiteBackend {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

func nullString(ns sql.NullString) any {
	if !ns.Valid {
		return nil
	}
	return ns.String
}
