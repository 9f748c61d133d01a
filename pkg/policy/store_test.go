package policy

import (
	"strings"
	"testing"
)

func storePolicy(id string, version int) *LenderPolicy {
	return &LenderPolicy{
		ID:       id,
		Name:     id,
		Version:  version,
		Programs: []Program{{ID: "standard", Name: "Standard"}},
	}
}

func TestStoreReplaceAndGet(t *testing.T) {
	s := NewStore()
	if err := s.Replace([]*LenderPolicy{storePolicy("a", 1), storePolicy("b", 2)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	p, ok := s.Get("b")
	if !ok || p.Version != 2 {
		t.Errorf("Get(b) = (%+v, %v)", p, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) reported found")
	}
	if s.LoadTime().IsZero() {
		t.Error("LoadTime() is zero after Replace")
	}
}

func TestStorePreservesLoadOrder(t *testing.T) {
	s := NewStore()
	if err := s.Replace([]*LenderPolicy{
		storePolicy("zeta", 1),
		storePolicy("alpha", 1),
		storePolicy("mid", 1),
	}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	all := s.All()
	for i, p := range all {
		if p.ID != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, p.ID, want[i])
		}
	}
	ids := s.IDs()
	for i, id := range ids {
		if id != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, id, want[i])
		}
	}
}

func TestStoreReplaceRejectsBadSets(t *testing.T) {
	s := NewStore()

	tests := []struct {
		name     string
		policies []*LenderPolicy
		wantMsg  string
	}{
		{"nil policy", []*LenderPolicy{nil}, "cannot be nil"},
		{"empty id", []*LenderPolicy{{Name: "x"}}, "cannot be empty"},
		{"duplicate id", []*LenderPolicy{storePolicy("a", 1), storePolicy("a", 2)}, "duplicate lender id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Replace(tt.policies)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Replace() error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}

	// A failed Replace must not disturb the active set.
	if err := s.Replace([]*LenderPolicy{storePolicy("keep", 1)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if err := s.Replace([]*LenderPolicy{nil}); err == nil {
		t.Fatal("Replace(nil policy) = nil error")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after failed Replace, want 1", s.Len())
	}
	if _, ok := s.Get("keep"); !ok {
		t.Error("active set lost after failed Replace")
	}
}

func TestStoreVersionTracksContent(t *testing.T) {
	s := NewStore()
	if err := s.Replace([]*LenderPolicy{storePolicy("a", 1)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	v1 := s.Version()
	if v1 == "" {
		t.Fatal("Version() empty after Replace")
	}

	// Same ids at same versions hash identically.
	other := NewStore()
	if err := other.Replace([]*LenderPolicy{storePolicy("a", 1)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if other.Version() != v1 {
		t.Errorf("identical sets hash differently: %s vs %s", other.Version(), v1)
	}

	// Bumping a policy version changes the hash.
	if err := s.Replace([]*LenderPolicy{storePolicy("a", 2)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if s.Version() == v1 {
		t.Error("Version() unchanged after policy version bump")
	}

	// Adding a lender changes the hash.
	if err := s.Replace([]*LenderPolicy{storePolicy("a", 2), storePolicy("b", 1)}); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if s.Version() == v1 {
		t.Error("Version() unchanged after adding a lender")
	}
}
