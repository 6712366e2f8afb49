package storage

import (
	"fmt"
	"maps"
	"sync"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// MemStore is an in-memory record and bookmark store for tests and fixtures.
type MemStore struct {
	mu        sync.RWMutex
	records   map[hgid.ID][]byte
	bookmarks map[string]hgid.ID
}

// Compile-time interface checks.
var (
	_ Store          = (*MemStore)(nil)
	_ Writer         = (*MemStore)(nil)
	_ BookmarkSource = (*MemStore)(nil)
)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records:   make(map[hgid.ID][]byte),
		bookmarks: make(map[string]hgid.ID),
	}
}

// Put stores a copy of data under id.
func (s *MemStore) Put(id hgid.ID, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyContent
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = buf
	return nil
}

// Get returns the record stored under id.
func (s *MemStore) Get(id hgid.ID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, nil
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SetBookmark points name at id.
func (s *MemStore) SetBookmark(name string, id hgid.ID) error {
	if err := validateBookmark(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookmarks[name] = id
	return nil
}

// Bookmarks returns a copy of the bookmark map.
func (s *MemStore) Bookmarks() (map[string]hgid.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.bookmarks), nil
}
