package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"lendstack-hq/atlas/pkg/match"
	"lendstack-hq/atlas/pkg/results"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/matches.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the results.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a SQLite storage backend, initializing the
// schema and enabling WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open match database %q: %w", config.Path, err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "results.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize applies pragmas and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d",
			s.config.BusyTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS match_records (
		id                 TEXT PRIMARY KEY,
		application_id     TEXT NOT NULL,
		policy_set_version TEXT NOT NULL,
		evaluated_at       TIMESTAMP NOT NULL,
		duration_ms        INTEGER NOT NULL,
		total_evaluated    INTEGER NOT NULL,
		total_eligible     INTEGER NOT NULL,
		best_lender_id     TEXT,
		best_fit_score     REAL NOT NULL,
		matches            BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_match_records_application
		ON match_records(application_id, evaluated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_match_records_evaluated_at
		ON match_records(evaluated_at);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create match schema: %w", err)
	}
	return nil
}

// Store persists a match record.
func (s *SQLiteStorage) Store(ctx context.Context, record *results.MatchRecord) error {
	matches, err := json.Marshal(record.Matches)
	if err != nil {
		return fmt.Errorf("failed to encode matches for record %q: %w", record.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO match_records
			(id, application_id, policy_set_version, evaluated_at, duration_ms,
			 total_evaluated, total_eligible, best_lender_id, best_fit_score, matches)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ApplicationID, record.PolicySetVersion,
		record.EvaluatedAt.UTC(), record.DurationMS,
		record.TotalEvaluated, record.TotalEligible,
		record.BestLenderID, record.BestFitScore, matches,
	)
	if err != nil {
		return fmt.Errorf("failed to store match record %q: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a record by id.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*results.MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, policy_set_version, evaluated_at, duration_ms,
		       total_evaluated, total_eligible, best_lender_id, best_fit_score, matches
		FROM match_records WHERE id = ?`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, results.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match record %q: %w", id, err)
	}
	return record, nil
}

// ListByApplication returns records for one application, newest first.
func (s *SQLiteStorage) ListByApplication(ctx context.Context, applicationID string, limit int) ([]*results.MatchRecord, error) {
	query := `
		SELECT id, application_id, policy_set_version, evaluated_at, duration_ms,
		       total_evaluated, total_eligible, best_lender_id, best_fit_score, matches
		FROM match_records WHERE application_id = ?
		ORDER BY evaluated_at DESC`
	args := []any{applicationID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match records: %w", err)
	}
	defer rows.Close()

	var out []*results.MatchRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match records: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM match_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count match records: %w", err)
	}
	return count, nil
}

// DeleteOlderThan deletes records evaluated before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM match_records WHERE evaluated_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired match records: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAllButNewest keeps only the newest keep records.
func (s *SQLiteStorage) DeleteAllButNewest(ctx context.Context, keep int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM match_records WHERE id NOT IN (
			SELECT id FROM match_records ORDER BY evaluated_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim match records: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord decodes one match_records row.
func scanRecord(row scanner) (*results.MatchRecord, error) {
	var (
		record  results.MatchRecord
		best    sql.NullString
		matches []byte
	)
	err := row.Scan(
		&record.ID, &record.ApplicationID, &record.PolicySetVersion,
		&record.EvaluatedAt, &record.DurationMS,
		&record.TotalEvaluated, &record.TotalEligible,
		&best, &record.BestFitScore, &matches,
	)
	if err != nil {
		return nil, err
	}
	record.BestLenderID = best.String

	record.Matches = []match.LenderMatch{}
	if err := json.Unmarshal(matches, &record.Matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	return &record, nil
}
