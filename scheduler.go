package recsdk

import (
	"context"
	"log"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Nudge Scheduler — periodic proactive recommendation delivery
// ──────────────────────────────────────────────

// NudgeSendFn delivers a formatted recommendation to a user. Injected by
// the caller (push channel, email, in-app inbox).
type NudgeSendFn func(userID string, msg *RecommendationMessage) error

// DeliveryStore tracks which users receive proactive nudges and when the
// last nudge went out. Provide a custom implementation for database
// persistence. If nil, NudgeScheduler uses an in-memory store.
type DeliveryStore interface {
	IsEnabled(userID string) bool
	Enable(userID string)
	Disable(userID string)
	EnabledUsers() []string
	RecordSent(userID string, sentAt time.Time)
	AlreadySentToday(userID string, now time.Time) bool
}

// ──────────────────────────────────────────────
// InMemoryDeliveryStore (default)
// ──────────────────────────────────────────────

// InMemoryDeliveryStore is a thread-safe, in-memory DeliveryStore.
// Data is lost on restart.
type InMemoryDeliveryStore struct {
	mu       sync.RWMutex
	enabled  map[string]bool
	sentDate map[string]string // userID -> "2006-01-02"
}

// NewInMemoryDeliveryStore creates a new in-memory delivery store.
func NewInMemoryDeliveryStore() *InMemoryDeliveryStore {
	return &InMemoryDeliveryStore{
		enabled:  make(map[string]bool),
		sentDate: make(map[string]string),
	}
}

func (s *InMemoryDeliveryStore) IsEnabled(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled[userID]
}

func (s *InMemoryDeliveryStore) Enable(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[userID] = true
}

func (s *InMemoryDeliveryStore) Disable(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, userID)
}

func (s *InMemoryDeliveryStore) EnabledUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]string, 0, len(s.enabled))
	for uid := range s.enabled {
		users = append(users, uid)
	}
	return users
}

func (s *InMemoryDeliveryStore) RecordSent(userID string, sentAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentDate[userID] = sentAt.Format("2006-01-02")
}

func (s *InMemoryDeliveryStore) AlreadySentToday(userID string, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sentDate[userID] == now.Format("2006-01-02")
}

// ──────────────────────────────────────────────
// NudgeScheduler
// ──────────────────────────────────────────────

// NudgeScheduler periodically runs the recommendation pipeline for every
// enabled user and delivers the top eligible item, at most once per day
// per user.
//
// Usage:
//
//	sched := recsdk.NewNudgeScheduler(recsdk.NudgeSchedulerOptions{
//		Interval: time.Hour,
//		SendFn:   sendFn,
//		States:   stateStore,
//		Catalog:  catalogStore,
//	})
//	sched.Start()   // non-blocking, starts a background goroutine
//	defer sched.Stop()
//
//	sched.Delivery.Enable("user_001")
type NudgeScheduler struct {
	Interval    time.Duration
	SendFn      NudgeSendFn
	Delivery    DeliveryStore
	States      UserStateStore
	Catalog     CatalogSource
	Recommender *Recommender

	// Sent and Cycles are cumulative delivery counters.
	Sent   atomic.Int64
	Cycles atomic.Int64

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
	nowFn   func() time.Time
}

// NudgeSchedulerOptions groups dependencies for NudgeScheduler.
type NudgeSchedulerOptions struct {
	Interval    time.Duration  // polling interval (e.g. time.Hour)
	SendFn      NudgeSendFn    // delivery callback
	Delivery    DeliveryStore  // optional (nil = in-memory)
	States      UserStateStore // user snapshot backend
	Catalog     CatalogSource  // catalog snapshot backend
	Recommender *Recommender   // optional (nil = default weights)
}

// NewNudgeScheduler creates a scheduler. It does not start polling until
// Start is called.
func NewNudgeScheduler(opts NudgeSchedulerOptions) *NudgeScheduler {
	delivery := opts.Delivery
	if delivery == nil {
		delivery = NewInMemoryDeliveryStore()
	}
	rec := opts.Recommender
	if rec == nil {
		rec = NewRecommender(RecommenderOptions{})
	}
	return &NudgeScheduler{
		Interval:    opts.Interval,
		SendFn:      opts.SendFn,
		Delivery:    delivery,
		States:      opts.States,
		Catalog:     opts.Catalog,
		Recommender: rec,
		stopCh:      make(chan struct{}),
		nowFn:       time.Now,
	}
}

// Start launches the background poll loop. Non-blocking.
func (s *NudgeScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.pollLoop(stopCh)
	log.Printf("[NudgeScheduler] Started (interval=%s)", s.Interval)
}

// Stop halts the background poll loop.
func (s *NudgeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
	log.Println("[NudgeScheduler] Stopped")
}

// pollLoop takes its stop channel as a parameter: re-reading s.stopCh
// after a Stop/Start pair would hand the old goroutine the new channel
// and leave both loops polling.
func (s *NudgeScheduler) pollLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.RunCycle(s.nowFn())
		}
	}
}

// RunCycle executes one delivery pass for the given time. Exposed so
// callers and tests can drive cycles without the ticker.
func (s *NudgeScheduler) RunCycle(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[NudgeScheduler] Cycle panic: %v", r)
		}
	}()
	s.Cycles.Inc()

	if s.SendFn == nil || s.States == nil || s.Catalog == nil {
		log.Println("[NudgeScheduler] Missing SendFn, States or Catalog, skipping cycle")
		return
	}

	ctx := context.Background()
	catalog, err := s.Catalog.Snapshot(ctx)
	if err != nil {
		log.Printf("[NudgeScheduler] Catalog snapshot failed: %v", err)
		return
	}
	if len(catalog) == 0 {
		return
	}

	for _, userID := range s.Delivery.EnabledUsers() {
		if s.Delivery.AlreadySentToday(userID, now) {
			continue
		}

		state, ok, err := s.States.Get(ctx, userID)
		if err != nil {
			log.Printf("[NudgeScheduler] State load failed | user=%s error=%v", userID, err)
			continue
		}
		if !ok {
			continue
		}

		items := s.Recommender.Recommend(catalog, state, 1, now)
		if len(items) == 0 {
			continue
		}
		msg := FormatMessage(&items[0], state)

		if err := s.SendFn(userID, msg); err != nil {
			log.Printf("[NudgeScheduler] Send failed | user=%s item=%s error=%v",
				userID, msg.ID, err)
			continue
		}

		s.Delivery.RecordSent(userID, now)
		s.Sent.Inc()
		log.Printf("[NudgeScheduler] Sent | user=%s item=%s", userID, msg.ID)
	}
}
