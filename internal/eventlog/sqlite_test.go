package eventlog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory database with the event_log schema.
func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE event_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			type TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			mode_at_time TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		t.Fatalf("creating event_log table: %v", err)
	}

	return NewSQLiteRepository(db)
}

// appendEntries inserts n entries with distinct timestamps.
func appendEntries(t *testing.T, repo *SQLiteRepository, n int, eventType string) {
	t.Helper()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		entry := &Entry{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Type:       eventType,
			Detail:     "entry",
			ModeAtTime: "disarmed",
		}
		if err := repo.Append(context.Background(), entry); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func TestAppend_AssignsID(t *testing.T) {
	repo := setupTestDB(t)

	first := &Entry{Type: TypeArmed, Detail: "armed by credential", ModeAtTime: "armed"}
	if err := repo.Append(context.Background(), first); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first.ID == 0 {
		t.Error("Append() did not assign an ID")
	}
	if first.Timestamp.IsZero() {
		t.Error("Append() did not assign a timestamp")
	}

	second := &Entry{Type: TypeDisarmed, ModeAtTime: "disarmed"}
	if err := repo.Append(context.Background(), second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("IDs not monotonic: first=%d second=%d", first.ID, second.ID)
	}
}

func TestAppend_MissingType(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.Append(context.Background(), &Entry{Detail: "no type"})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Append() error = %v, want ErrInvalidEntry", err)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	appendEntries(t, repo, 5, TypeMotion)

	entries, err := repo.Recent(context.Background(), 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ID > entries[i-1].ID {
			t.Error("Recent() not ordered newest first")
		}
	}
}

func TestRecent_DefaultAndClampedLimits(t *testing.T) {
	repo := setupTestDB(t)
	appendEntries(t, repo, 60, TypeMotion)

	entries, err := repo.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != defaultLimit {
		t.Errorf("Recent(0) returned %d entries, want %d", len(entries), defaultLimit)
	}

	entries, err = repo.Recent(context.Background(), 10000)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 60 {
		t.Errorf("Recent(10000) returned %d entries, want 60", len(entries))
	}
}

func TestRecent_Empty(t *testing.T) {
	repo := setupTestDB(t)

	entries, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() on empty log returned %d entries", len(entries))
	}
	if entries == nil {
		t.Error("Recent() returned nil slice, want empty")
	}
}

func TestByType(t *testing.T) {
	repo := setupTestDB(t)
	appendEntries(t, repo, 3, TypeMotion)
	appendEntries(t, repo, 2, TypeRemoteCommand)

	entries, err := repo.ByType(context.Background(), TypeRemoteCommand, 10)
	if err != nil {
		t.Fatalf("ByType() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ByType() returned %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Type != TypeRemoteCommand {
			t.Errorf("ByType() returned entry of type %q", entry.Type)
		}
	}
}

func TestByTimeRange(t *testing.T) {
	repo := setupTestDB(t)
	appendEntries(t, repo, 10, TypeMotion) // minutes 0..9 from base

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	start := base.Add(2 * time.Minute)
	end := base.Add(5 * time.Minute)

	entries, err := repo.ByTimeRange(context.Background(), start, end, 10)
	if err != nil {
		t.Fatalf("ByTimeRange() error = %v", err)
	}
	// Inclusive start, exclusive end: minutes 2, 3, 4.
	if len(entries) != 3 {
		t.Fatalf("ByTimeRange() returned %d entries, want 3", len(entries))
	}
	for _, entry := range entries {
		if entry.Timestamp.Before(start) || !entry.Timestamp.Before(end) {
			t.Errorf("ByTimeRange() returned out-of-range entry at %v", entry.Timestamp)
		}
	}
}

func TestByTimeRange_MixedPrecisionTimestamps(t *testing.T) {
	repo := setupTestDB(t)

	// Timestamp strings are compared in SQL, so whole-second and
	// fractional values must sort consistently.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(time.Second),
		base.Add(1500 * time.Millisecond),
	}
	for _, ts := range stamps {
		entry := &Entry{Timestamp: ts, Type: TypeMotion, ModeAtTime: "armed"}
		if err := repo.Append(context.Background(), entry); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := repo.ByTimeRange(context.Background(), base, base.Add(time.Second), 10)
	if err != nil {
		t.Fatalf("ByTimeRange() error = %v", err)
	}
	// Inclusive start, exclusive end: the whole second and the half
	// second, not the entries at or past 12:00:01.
	if len(entries) != 2 {
		t.Fatalf("ByTimeRange() returned %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Timestamp.Before(base) || !entry.Timestamp.Before(base.Add(time.Second)) {
			t.Errorf("ByTimeRange() returned out-of-range entry at %v", entry.Timestamp)
		}
	}
}

func TestByTimeRange_InvalidRange(t *testing.T) {
	repo := setupTestDB(t)

	now := time.Now()
	_, err := repo.ByTimeRange(context.Background(), now, now.Add(-time.Hour), 10)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ByTimeRange() error = %v, want ErrInvalidRange", err)
	}
}

func TestPruneOlderThan(t *testing.T) {
	repo := setupTestDB(t)
	appendEntries(t, repo, 10, TypeMotion)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	removed, err := repo.pruneOlderThan(context.Background(), base.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("pruneOlderThan() error = %v", err)
	}
	if removed != 5 {
		t.Errorf("pruneOlderThan() removed %d entries, want 5", removed)
	}

	entries, err := repo.Recent(context.Background(), 100)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Recent() after prune returned %d entries, want 5", len(entries))
	}
}
