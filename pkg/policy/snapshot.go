package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (cgo-free)
)

// SnapshotStore persists the last validated policy set to SQLite. When a
// policy directory is broken at startup (bad deploy, partial sync), the
// process can fall back to the last known-good set instead of starting with
// no lenders.
type SnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSnapshotStore opens (creating if needed) a snapshot store at the
// given database path.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store %q: %w", path, err)
	}

	// Single writer, occasional reader: a small pool is enough.
	db.SetMaxOpenConns(2)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS policy_snapshots (
		lender_id  TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		position   INTEGER NOT NULL,
		policy     BLOB NOT NULL,
		saved_at   TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &SnapshotStore{
		db:     db,
		logger: slog.Default().With("component", "policy.snapshot"),
	}, nil
}

// Save replaces the stored snapshot with the given policy set. The set's
// order is preserved so a restored set ranks ties identically.
func (s *SnapshotStore) Save(ctx context.Context, policies []*LenderPolicy) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM policy_snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	now := time.Now().UTC()
	for i, p := range policies {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode policy %q: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO policy_snapshots (lender_id, version, position, policy, saved_at) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.Version, i, data, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save policy %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Info("policy snapshot saved", "lenders", len(policies))
	return nil
}

// Load returns the stored policy set in its original order. An empty store
// returns an empty slice and no error.
func (s *SnapshotStore) Load(ctx context.Context) ([]*LenderPolicy, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT policy FROM policy_snapshots ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var policies []*LenderPolicy
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		var p LenderPolicy
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot policy: %w", err)
		}
		policies = append(policies, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
	}
	return policies, nil
}

// SavedAt returns when the snapshot was last written, or the zero time for
// an empty store.
func (s *SnapshotStore) SavedAt(ctx context.Context) (time.Time, error) {
	var saved sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(saved_at) FROM policy_snapshots").Scan(&saved)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read snapshot timestamp: %w", err)
	}
	if !saved.Valid {
		return time.Time{}, nil
	}
	return saved.Time, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
