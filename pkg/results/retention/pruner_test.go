package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lendstack-hq/atlas/pkg/results"
	"lendstack-hq/atlas/pkg/results/storage"
)

func seed(t *testing.T, s results.Storage, id string, age time.Duration) {
	t.Helper()
	err := s.Store(context.Background(), &results.MatchRecord{
		ID:            id,
		ApplicationID: "app-1",
		EvaluatedAt:   time.Now().Add(-age),
	})
	if err != nil {
		t.Fatalf("seeding %s: %v", id, err)
	}
}

func TestPrunerAgeBasedDeletion(t *testing.T) {
	s := storage.NewMemoryStorage()
	seed(t, s, "ancient", 100*24*time.Hour)
	seed(t, s, "recent", 24*time.Hour)

	p := NewPruner(s, &Config{RetentionDays: 90})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, _ := s.Count(context.Background())
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
	if _, err := s.Get(context.Background(), "recent"); err != nil {
		t.Errorf("recent record lost: %v", err)
	}
}

func TestPrunerCountCap(t *testing.T) {
	s := storage.NewMemoryStorage()
	for i := 0; i < 10; i++ {
		seed(t, s, fmt.Sprintf("r%d", i), time.Duration(i)*time.Hour)
	}

	p := NewPruner(s, &Config{MaxRecords: 4})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 6 {
		t.Errorf("deleted = %d, want 6", deleted)
	}

	count, _ := s.Count(context.Background())
	if count != 4 {
		t.Errorf("remaining = %d, want 4", count)
	}
	// The newest records (lowest age) survive.
	for _, id := range []string{"r0", "r1", "r2", "r3"} {
		if _, err := s.Get(context.Background(), id); err != nil {
			t.Errorf("newest record %s lost: %v", id, err)
		}
	}
}

func TestPrunerZeroConfigIsNoop(t *testing.T) {
	s := storage.NewMemoryStorage()
	seed(t, s, "ancient", 1000*24*time.Hour)

	p := NewPruner(s, &Config{})
	deleted, err := p.Prune(context.Background())
	if err != nil || deleted != 0 {
		t.Errorf("Prune() = (%d, %v), want (0, nil)", deleted, err)
	}
	count, _ := s.Count(context.Background())
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
}

func TestPrunerCombinesAgeAndCap(t *testing.T) {
	s := storage.NewMemoryStorage()
	seed(t, s, "expired", 200*24*time.Hour)
	for i := 0; i < 5; i++ {
		seed(t, s, fmt.Sprintf("r%d", i), time.Duration(i)*time.Hour)
	}

	p := NewPruner(s, &Config{RetentionDays: 90, MaxRecords: 3})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3 (one expired, two over cap)", deleted)
	}
	count, _ := s.Count(context.Background())
	if count != 3 {
		t.Errorf("remaining = %d, want 3", count)
	}
}
