package recsdk

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ──────────────────────────────────────────────
// Interaction feedback — folds user interactions into stored state
// ──────────────────────────────────────────────

// InteractionKind classifies a user interaction with a content item.
type InteractionKind string

const (
	InteractionViewed    InteractionKind = "viewed"
	InteractionStarted   InteractionKind = "started"
	InteractionCompleted InteractionKind = "completed"
	InteractionDismissed InteractionKind = "dismissed"
)

// Interaction is one user event against a content item.
type Interaction struct {
	ItemID string          `json:"itemId"`
	Kind   InteractionKind `json:"kind"`
	// At is the ms-epoch event time; 0 means "now" at record time.
	At int64 `json:"at,omitempty"`
}

// OnChangeFn is called after a batch of interactions has been applied.
type OnChangeFn func(userID string, applied []Interaction)

// InteractionRecorder folds interaction events into a UserStateStore so
// the next recommendation call sees an up-to-date snapshot:
//
//   - viewed/dismissed — enters the recently-viewed set and stamps the
//     cooldown clock
//   - started — joins inProgressCards
//   - completed — joins completedCards and leaves inProgressCards
//
// Usage:
//
//	rec := recsdk.NewInteractionRecorder(store, 0, nil)
//	err := rec.Record(ctx, "user_001", interactions)
type InteractionRecorder struct {
	store     UserStateStore
	maxRecent int
	onChange  OnChangeFn
	nowFn     func() time.Time
}

// NewInteractionRecorder creates a recorder.
//
// Parameters:
//   - store: user state backend (required)
//   - maxRecent: bound on the recently-viewed set (0 = default 20)
//   - onChange: optional callback after state changes
func NewInteractionRecorder(store UserStateStore, maxRecent int, onChange OnChangeFn) *InteractionRecorder {
	if maxRecent <= 0 {
		maxRecent = 20
	}
	return &InteractionRecorder{
		store:     store,
		maxRecent: maxRecent,
		onChange:  onChange,
		nowFn:     time.Now,
	}
}

// Record applies a batch of interactions to the stored user state.
// Unknown kinds are skipped and logged, not errors.
func (r *InteractionRecorder) Record(ctx context.Context, userID string, interactions []Interaction) error {
	if r.store == nil {
		return fmt.Errorf("recsdk: interaction recorder has no store")
	}
	if len(interactions) == 0 {
		return nil
	}

	applied := make([]Interaction, 0, len(interactions))
	err := r.store.Update(ctx, userID, func(state *UserState) {
		for _, in := range interactions {
			if in.ItemID == "" {
				continue
			}
			at := in.At
			if at == 0 {
				at = r.nowFn().UnixMilli()
			}

			switch in.Kind {
			case InteractionViewed, InteractionDismissed:
				r.markViewed(state, in.ItemID, at)
			case InteractionStarted:
				if !state.Completed(in.ItemID) && !contains(state.InProgressCards, in.ItemID) {
					state.InProgressCards = append(state.InProgressCards, in.ItemID)
				}
			case InteractionCompleted:
				if !contains(state.CompletedCards, in.ItemID) {
					state.CompletedCards = append(state.CompletedCards, in.ItemID)
				}
				state.InProgressCards = remove(state.InProgressCards, in.ItemID)
			default:
				log.Printf("[InteractionRecorder] Unknown kind %q skipped | user=%s item=%s",
					in.Kind, userID, in.ItemID)
				continue
			}
			applied = append(applied, in)
		}
	})
	if err != nil {
		return fmt.Errorf("recsdk: record interactions: %w", err)
	}

	if len(applied) > 0 && r.onChange != nil {
		r.onChange(userID, applied)
	}
	return nil
}

// markViewed moves the item to the tail of the recently-viewed set, trims
// the set to its bound, and stamps the cooldown clock.
func (r *InteractionRecorder) markViewed(state *UserState, itemID string, at int64) {
	state.RecentlyViewed = remove(state.RecentlyViewed, itemID)
	state.RecentlyViewed = append(state.RecentlyViewed, itemID)
	if over := len(state.RecentlyViewed) - r.maxRecent; over > 0 {
		for _, id := range state.RecentlyViewed[:over] {
			delete(state.LastViewedTime, id)
		}
		state.RecentlyViewed = state.RecentlyViewed[over:]
	}
	if state.LastViewedTime == nil {
		state.LastViewedTime = make(map[string]int64)
	}
	state.LastViewedTime[itemID] = at
}

func remove(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
