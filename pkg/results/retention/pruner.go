package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lendstack-hq/atlas/pkg/results"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain match records.
	// 0 means keep records forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables scheduling.
	PruneSchedule string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    0,
	}
}

// Pruner enforces retention policies on match records.
type Pruner struct {
	storage results.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a retention pruner.
func NewPruner(storage results.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "results.retention"),
	}
}

// Prune runs one pruning cycle: age-based deletion first, then count-based
// trimming. It returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("age-based pruning failed: %w", err)
		}
		total += deleted
		if deleted > 0 {
			p.logger.Info("pruned expired match records",
				"deleted", deleted,
				"retention_days", p.config.RetentionDays,
			)
		}
	}

	if p.config.MaxRecords > 0 {
		count, err := p.storage.Count(ctx)
		if err != nil {
			return total, fmt.Errorf("count-based pruning failed: %w", err)
		}
		if count > p.config.MaxRecords {
			deleted, err := p.storage.DeleteAllButNewest(ctx, p.config.MaxRecords)
			if err != nil {
				return total, fmt.Errorf("count-based pruning failed: %w", err)
			}
			total += deleted
			if deleted > 0 {
				p.logger.Info("trimmed match records to cap",
					"deleted", deleted,
					"max_records", p.config.MaxRecords,
				)
			}
		}
	}

	return total, nil
}
