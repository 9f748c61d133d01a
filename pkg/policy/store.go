package policy

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is a thread-safe holder for the active policy set. Replace swaps
// the whole set atomically, so readers always see a consistent snapshot of
// one load generation; the content-hash version changes whenever the set
// does.
type Store struct {
	mu       sync.RWMutex
	policies map[string]*LenderPolicy
	order    []string
	version  string
	loadTime time.Time
}

// NewStore creates an empty policy store.
func NewStore() *Store {
	return &Store{
		policies: make(map[string]*LenderPolicy),
	}
}

// Replace atomically swaps the active policy set. Policies keep the given
// order, which is the order evaluation results fall back to on score ties.
func (s *Store) Replace(policies []*LenderPolicy) error {
	m := make(map[string]*LenderPolicy, len(policies))
	order := make([]string, 0, len(policies))
	for _, p := range policies {
		if p == nil {
			return fmt.Errorf("store: policy cannot be nil")
		}
		if p.ID == "" {
			return fmt.Errorf("store: policy id cannot be empty")
		}
		if _, dup := m[p.ID]; dup {
			return fmt.Errorf("store: duplicate lender id %q", p.ID)
		}
		m[p.ID] = p
		order = append(order, p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = m
	s.order = order
	s.version = hashPolicySet(m)
	s.loadTime = time.Now()
	return nil
}

// Get retrieves a policy by lender id.
func (s *Store) Get(lenderID string) (*LenderPolicy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[lenderID]
	return p, ok
}

// All returns the active policies in load order.
func (s *Store) All() []*LenderPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*LenderPolicy, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.policies[id])
	}
	return out
}

// IDs returns the active lender ids in load order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of active policies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies)
}

// Version returns the content-hash version of the active set. Two stores
// holding the same lender ids at the same policy versions report the same
// value.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LoadTime returns when the active set was last replaced.
func (s *Store) LoadTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadTime
}

// hashPolicySet computes a deterministic content hash over lender ids and
// policy versions.
func hashPolicySet(policies map[string]*LenderPolicy) string {
	ids := make([]string, 0, len(policies))
	for id := range policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		fmt.Fprintf(h, "%s@%d\n", id, policies[id].Version)
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}
