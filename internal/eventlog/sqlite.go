package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Query limits.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// timestampLayout is fixed width, unlike RFC3339Nano which drops
// trailing fractional zeros. Range queries compare stored timestamps
// as strings, and string order only matches time order when every
// value has the same width.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores event log entries in SQLite.
//
// The event_log table is append-only: inserts assign autoincrement IDs
// so ordering by ID matches ordering by time of arrival even when two
// entries share a timestamp.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new event log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts a new entry and assigns its ID and timestamp.
//
// The Timestamp is set to now (UTC) when zero. The assigned ID is
// written back to the entry.
func (r *SQLiteRepository) Append(ctx context.Context, entry *Entry) error {
	if entry.Type == "" {
		return ErrInvalidEntry
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (timestamp, type, detail, mode_at_time)
		 VALUES (?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(timestampLayout),
		entry.Type, entry.Detail, entry.ModeAtTime,
	)
	if err != nil {
		return fmt.Errorf("inserting event log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading event log entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// Recent returns the most recent entries, newest first.
//
// A non-positive limit uses the default page size; limits above the
// maximum are clamped.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT id, timestamp, type, detail, mode_at_time FROM event_log
		 ORDER BY id DESC LIMIT ?`,
		clampLimit(limit),
	)
}

// ByType returns the most recent entries of a given type, newest first.
func (r *SQLiteRepository) ByType(ctx context.Context, eventType string, limit int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT id, timestamp, type, detail, mode_at_time FROM event_log
		 WHERE type = ? ORDER BY id DESC LIMIT ?`,
		eventType, clampLimit(limit),
	)
}

// ByTimeRange returns entries with start <= timestamp < end, newest first.
func (r *SQLiteRepository) ByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]Entry, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	return r.query(ctx,
		`SELECT id, timestamp, type, detail, mode_at_time FROM event_log
		 WHERE timestamp >= ? AND timestamp < ? ORDER BY id DESC LIMIT ?`,
		start.UTC().Format(timestampLayout),
		end.UTC().Format(timestampLayout),
		clampLimit(limit),
	)
}

// pruneOlderThan deletes entries older than the cutoff and returns the
// number removed. Maintenance only; not part of the Repository contract.
func (r *SQLiteRepository) pruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM event_log WHERE timestamp < ?`,
		cutoff.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning event log: %w", err)
	}
	return result.RowsAffected()
}

// query runs a SELECT and scans the result rows.
func (r *SQLiteRepository) query(ctx context.Context, stmt string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying event log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var timestamp string

		if err := rows.Scan(&entry.ID, &timestamp, &entry.Type, &entry.Detail, &entry.ModeAtTime); err != nil {
			return nil, fmt.Errorf("scanning event log entry: %w", err)
		}

		t, err := time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing event log timestamp %q: %w", timestamp, err)
		}
		entry.Timestamp = t

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event log: %w", err)
	}

	return entries, nil
}

// clampLimit applies the default and maximum page sizes.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
