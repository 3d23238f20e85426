package storage

import "sync"

// MemoryStore is the default VisitedStore: a mutex-guarded set scoped to one
// seed-site crawl, discarded when the crawl ends.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

// NewMemoryStore creates an empty in-memory visited store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]bool)}
}

// MarkVisited implements VisitedStore.
func (s *MemoryStore) MarkVisited(canonicalKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[canonicalKey] {
		return false, nil
	}
	s.keys[canonicalKey] = true
	return true, nil
}

// VisitedCount implements VisitedStore.
func (s *MemoryStore) VisitedCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys), nil
}

// Close implements VisitedStore. Nothing to release.
func (s *MemoryStore) Close() error {
	return nil
}
