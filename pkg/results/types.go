package results

import (
	"context"
	"errors"
	"time"

	"lendstack-hq/atlas/pkg/match"
)

// ErrRecordNotFound is returned when a match record does not exist.
var ErrRecordNotFound = errors.New("match record not found")

// MatchRecord is one persisted evaluation outcome.
type MatchRecord struct {
	// ID is the unique record identifier (UUID v4).
	ID string `json:"id"`

	// ApplicationID is the evaluated application.
	ApplicationID string `json:"application_id"`

	// PolicySetVersion is the content-hash version of the policy set the
	// evaluation ran against.
	PolicySetVersion string `json:"policy_set_version"`

	// EvaluatedAt is when the evaluation ran.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// DurationMS is the evaluation wall time in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// TotalEvaluated and TotalEligible summarize the run.
	TotalEvaluated int `json:"total_evaluated"`
	TotalEligible  int `json:"total_eligible"`

	// BestLenderID and BestFitScore describe the top match; empty/zero
	// when no lender was eligible.
	BestLenderID string  `json:"best_lender_id,omitempty"`
	BestFitScore float64 `json:"best_fit_score"`

	// Matches is the full per-lender outcome detail.
	Matches []match.LenderMatch `json:"matches"`
}

// Storage is the interface for match record persistence backends.
type Storage interface {
	// Store persists a match record.
	Store(ctx context.Context, record *MatchRecord) error

	// Get retrieves a record by id. Returns ErrRecordNotFound when the
	// record does not exist.
	Get(ctx context.Context, id string) (*MatchRecord, error)

	// ListByApplication returns records for one application, newest
	// first, up to limit (0 = no limit).
	ListByApplication(ctx context.Context, applicationID string, limit int) ([]*MatchRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteOlderThan deletes records evaluated before cutoff and
	// returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAllButNewest keeps only the newest keep records and returns
	// the number deleted.
	DeleteAllButNewest(ctx context.Context, keep int64) (int64, error)

	// Close releases backend resources.
	Close() error
}
