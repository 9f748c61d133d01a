package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"lendstack-hq/atlas/pkg/results"
)

// MemoryStorage is an in-memory match record store. Safe for concurrent
// use; intended for tests and development.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*results.MatchRecord
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*results.MatchRecord),
	}
}

// Store persists a match record.
func (s *MemoryStorage) Store(ctx context.Context, record *results.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Get retrieves a record by id.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*results.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, results.ErrRecordNotFound
	}
	return record, nil
}

// ListByApplication returns records for one application, newest first.
func (s *MemoryStorage) ListByApplication(ctx context.Context, applicationID string, limit int) ([]*results.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*results.MatchRecord
	for _, record := range s.records {
		if record.ApplicationID == applicationID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// DeleteOlderThan deletes records evaluated before cutoff.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.EvaluatedAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteAllButNewest keeps only the newest keep records.
func (s *MemoryStorage) DeleteAllButNewest(ctx context.Context, keep int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int64(len(s.records)) <= keep {
		return 0, nil
	}

	all := make([]*results.MatchRecord, 0, len(s.records))
	for _, record := range s.records {
		all = append(all, record)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].EvaluatedAt.After(all[j].EvaluatedAt)
	})

	var deleted int64
	for _, record := range all[keep:] {
		delete(s.records, record.ID)
		deleted++
	}
	return deleted, nil
}

// Close releases resources (no-op for memory storage).
func (s *MemoryStorage) Close() error {
	return nil
}
