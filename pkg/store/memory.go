package store

import (
	"sync"
)

// MemoryStore keeps entries for the process lifetime only. It is the final
// fallback when neither keyring nor file storage is usable.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]Entry{}}
}

func (s *MemoryStore) Kind() string { return KindMemory }

func (s *MemoryStore) Get(criteria Criteria) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if criteria.matches(e) {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *MemoryStore) Set(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Hash] = entry
	return nil
}

func (s *MemoryStore) Delete(criteria ...Criteria) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []Entry
	for hash, e := range s.entries {
		for _, c := range criteria {
			if c.matches(e) {
				removed = append(removed, e)
				delete(s.entries, hash)
				break
			}
		}
	}
	return removed, nil
}

func (s *MemoryStore) Clear(baseURL string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []Entry
	for hash, e := range s.entries {
		if baseURL != "" && e.BaseURL != baseURL {
			continue
		}
		removed = append(removed, e)
		delete(s.entries, hash)
	}
	return removed, nil
}
