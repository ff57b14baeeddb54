package recsdk

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// InteractionRecorder
// ══════════════════════════════════════════════

func TestInteractionRecorder_Viewed(t *testing.T) {
	store := NewInMemoryUserStateStore()
	rec := NewInteractionRecorder(store, 0, nil)

	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC).UnixMilli()
	err := rec.Record(context.Background(), "u1", []Interaction{
		{ItemID: "a", Kind: InteractionViewed, At: at},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, _, _ := store.Get(context.Background(), "u1")
	if !state.ViewedRecently("a") {
		t.Fatal("viewed item missing from recentlyViewed")
	}
	if state.LastViewedTime["a"] != at {
		t.Fatalf("cooldown clock not stamped, got %d", state.LastViewedTime["a"])
	}
}

func TestInteractionRecorder_CompletedMovesOutOfProgress(t *testing.T) {
	store := NewInMemoryUserStateStore()
	rec := NewInteractionRecorder(store, 0, nil)
	ctx := context.Background()

	_ = rec.Record(ctx, "u1", []Interaction{{ItemID: "a", Kind: InteractionStarted}})
	state, _, _ := store.Get(ctx, "u1")
	if !contains(state.InProgressCards, "a") {
		t.Fatal("started item missing from inProgressCards")
	}

	_ = rec.Record(ctx, "u1", []Interaction{{ItemID: "a", Kind: InteractionCompleted}})
	state, _, _ = store.Get(ctx, "u1")
	if !contains(state.CompletedCards, "a") {
		t.Fatal("completed item missing from completedCards")
	}
	if contains(state.InProgressCards, "a") {
		t.Fatal("completed item still in progress")
	}

	// Starting again after completion is a no-op.
	_ = rec.Record(ctx, "u1", []Interaction{{ItemID: "a", Kind: InteractionStarted}})
	state, _, _ = store.Get(ctx, "u1")
	if contains(state.InProgressCards, "a") {
		t.Fatal("completed item must not re-enter progress")
	}
}

func TestInteractionRecorder_RecentlyViewedBounded(t *testing.T) {
	store := NewInMemoryUserStateStore()
	rec := NewInteractionRecorder(store, 3, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("item-%d", i)
		_ = rec.Record(ctx, "u1", []Interaction{{ItemID: id, Kind: InteractionViewed, At: int64(1000 + i)}})
	}

	state, _, _ := store.Get(ctx, "u1")
	if len(state.RecentlyViewed) != 3 {
		t.Fatalf("expected bound of 3, got %v", state.RecentlyViewed)
	}
	if state.ViewedRecently("item-0") || state.ViewedRecently("item-1") {
		t.Fatalf("oldest entries must be evicted, got %v", state.RecentlyViewed)
	}
	if _, ok := state.LastViewedTime["item-0"]; ok {
		t.Fatal("evicted entry must drop its timestamp")
	}
}

func TestInteractionRecorder_RepeatViewMovesToTail(t *testing.T) {
	store := NewInMemoryUserStateStore()
	rec := NewInteractionRecorder(store, 0, nil)
	ctx := context.Background()

	_ = rec.Record(ctx, "u1", []Interaction{
		{ItemID: "a", Kind: InteractionViewed, At: 1},
		{ItemID: "b", Kind: InteractionViewed, At: 2},
		{ItemID: "a", Kind: InteractionViewed, At: 3},
	})

	state, _, _ := store.Get(ctx, "u1")
	if len(state.RecentlyViewed) != 2 || state.RecentlyViewed[1] != "a" {
		t.Fatalf("repeat view must move to tail, got %v", state.RecentlyViewed)
	}
	if state.LastViewedTime["a"] != 3 {
		t.Fatalf("timestamp must be refreshed, got %d", state.LastViewedTime["a"])
	}
}

func TestInteractionRecorder_UnknownKindSkipped(t *testing.T) {
	store := NewInMemoryUserStateStore()
	var changed []Interaction
	rec := NewInteractionRecorder(store, 0, func(userID string, applied []Interaction) {
		changed = applied
	})

	err := rec.Record(context.Background(), "u1", []Interaction{
		{ItemID: "a", Kind: "shrugged"},
		{ItemID: "b", Kind: InteractionViewed},
	})
	if err != nil {
		t.Fatalf("unknown kinds must not error: %v", err)
	}
	if len(changed) != 1 || changed[0].ItemID != "b" {
		t.Fatalf("only the known interaction should apply, got %v", changed)
	}
}

func TestInteractionRecorder_EmptyBatchNoCallback(t *testing.T) {
	called := false
	rec := NewInteractionRecorder(NewInMemoryUserStateStore(), 0, func(string, []Interaction) {
		called = true
	})

	if err := rec.Record(context.Background(), "u1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("empty batch must not invoke the callback")
	}
}
