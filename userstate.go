package recsdk

import (
	"context"
	"sync"
)

// ──────────────────────────────────────────────
// UserStateStore — pluggable user snapshot backend
// ──────────────────────────────────────────────

// UserStateStore persists per-user state between calls so a fresh
// UserState snapshot can be reconstructed per request. Provide a custom
// implementation for database persistence.
type UserStateStore interface {
	// Get returns the stored snapshot for a user. The bool is false when
	// the user has no stored state yet.
	Get(ctx context.Context, userID string) (UserState, bool, error)
	Put(ctx context.Context, userID string, state UserState) error
	// Update applies fn to the stored snapshot (zero value for new users)
	// and writes the result back atomically with respect to other Updates.
	Update(ctx context.Context, userID string, fn func(*UserState)) error
}

// InMemoryUserStateStore is a thread-safe in-memory UserStateStore.
// Snapshots crossing the store boundary are deep copies in both
// directions, so mutating a returned UserState (or the maps and slices it
// carries) never aliases stored state. Data is lost on restart.
type InMemoryUserStateStore struct {
	mu     sync.RWMutex
	states map[string]UserState
}

// NewInMemoryUserStateStore creates an empty in-memory store.
func NewInMemoryUserStateStore() *InMemoryUserStateStore {
	return &InMemoryUserStateStore{states: make(map[string]UserState)}
}

func (s *InMemoryUserStateStore) Get(ctx context.Context, userID string) (UserState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[userID]
	return cloneUserState(state), ok, nil
}

func (s *InMemoryUserStateStore) Put(ctx context.Context, userID string, state UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = cloneUserState(state)
	return nil
}

func (s *InMemoryUserStateStore) Update(ctx context.Context, userID string, fn func(*UserState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := cloneUserState(s.states[userID])
	fn(&state)
	s.states[userID] = state
	return nil
}

// cloneUserState deep-copies the reference fields of a UserState so the
// copy shares no backing storage with the original.
func cloneUserState(state UserState) UserState {
	state.Interests = cloneStrings(state.Interests)
	state.CompletedCards = cloneStrings(state.CompletedCards)
	state.CompletedLessons = cloneStrings(state.CompletedLessons)
	state.InProgressCards = cloneStrings(state.InProgressCards)
	state.RecentlyViewed = cloneStrings(state.RecentlyViewed)
	if state.LastViewedTime != nil {
		times := make(map[string]int64, len(state.LastViewedTime))
		for id, at := range state.LastViewedTime {
			times[id] = at
		}
		state.LastViewedTime = times
	}
	return state
}

func cloneStrings(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
