package recsdk

import (
	"context"
	"sync"
)

// ──────────────────────────────────────────────
// CatalogStore — pluggable content catalog backend
// ──────────────────────────────────────────────

// CatalogStore is the storage interface for content items. The engine only
// ever reads snapshots; writes come from whatever content pipeline owns
// the catalog. Every CatalogStore is also a CatalogSource.
type CatalogStore interface {
	CatalogSource

	Get(ctx context.Context, id string) (ContentItem, bool, error)
	Put(ctx context.Context, item ContentItem) error
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
}

// InMemoryCatalogStore is a thread-safe in-memory CatalogStore for
// development and tests. Snapshot order is insertion order, which keeps
// ranking tie-breaks deterministic. Data is lost on restart.
type InMemoryCatalogStore struct {
	mu    sync.RWMutex
	items map[string]ContentItem
	order []string
}

// NewInMemoryCatalogStore creates an empty in-memory catalog, optionally
// seeded with items.
func NewInMemoryCatalogStore(seed ...ContentItem) *InMemoryCatalogStore {
	s := &InMemoryCatalogStore{items: make(map[string]ContentItem)}
	for _, item := range seed {
		s.put(item)
	}
	return s
}

func (s *InMemoryCatalogStore) put(item ContentItem) {
	if _, exists := s.items[item.ID]; !exists {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = item
}

// Snapshot returns a copy of all items in insertion order.
func (s *InMemoryCatalogStore) Snapshot(ctx context.Context) ([]ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ContentItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *InMemoryCatalogStore) Get(ctx context.Context, id string) (ContentItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok, nil
}

func (s *InMemoryCatalogStore) Put(ctx context.Context, item ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(item)
	return nil
}

func (s *InMemoryCatalogStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryCatalogStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
