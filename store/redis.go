// Package store provides Redis-backed implementations of the SDK's
// catalog, user-state and delivery store interfaces.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	recsdk "github.com/betterwithin/recommend-sdk-go"
)

// Config configures the Redis stores.
type Config struct {
	Prefix string        // key prefix, default "bw"
	TTL    time.Duration // TTL for user-state entries, 0 = no expiry
}

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = "bw"
	}
	return c
}

// Dial connects a go-redis client and verifies it with a ping.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ──────────────────────────────────────────────
// RedisCatalogStore
// ──────────────────────────────────────────────

// RedisCatalogStore implements recsdk.CatalogStore on Redis. Items are
// JSON values under "{prefix}:catalog:{id}"; Snapshot order is
// id-lexicographic, which keeps ranking tie-breaks deterministic across
// calls.
type RedisCatalogStore struct {
	client *goredis.Client
	cfg    Config
}

// NewRedisCatalogStore creates a catalog store on the given client.
func NewRedisCatalogStore(client *goredis.Client, cfg Config) *RedisCatalogStore {
	return &RedisCatalogStore{client: client, cfg: cfg.withDefaults()}
}

func (s *RedisCatalogStore) itemKey(id string) string {
	return fmt.Sprintf("%s:catalog:%s", s.cfg.Prefix, id)
}

func (s *RedisCatalogStore) indexKey() string {
	return fmt.Sprintf("%s:catalog:_ids", s.cfg.Prefix)
}

func (s *RedisCatalogStore) Snapshot(ctx context.Context) ([]recsdk.ContentItem, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}
	sort.Strings(ids)

	items := make([]recsdk.ContentItem, 0, len(ids))
	for _, id := range ids {
		item, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *RedisCatalogStore) Get(ctx context.Context, id string) (recsdk.ContentItem, bool, error) {
	raw, err := s.client.Get(ctx, s.itemKey(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return recsdk.ContentItem{}, false, nil
	}
	if err != nil {
		return recsdk.ContentItem{}, false, fmt.Errorf("catalog get %s: %w", id, err)
	}
	var item recsdk.ContentItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return recsdk.ContentItem{}, false, fmt.Errorf("catalog decode %s: %w", id, err)
	}
	return item, true, nil
}

func (s *RedisCatalogStore) Put(ctx context.Context, item recsdk.ContentItem) error {
	if item.ID == "" {
		return fmt.Errorf("catalog put: empty item id")
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("catalog encode %s: %w", item.ID, err)
	}
	if err := s.client.Set(ctx, s.itemKey(item.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("catalog put %s: %w", item.ID, err)
	}
	if err := s.client.SAdd(ctx, s.indexKey(), item.ID).Err(); err != nil {
		return fmt.Errorf("catalog index %s: %w", item.ID, err)
	}
	return nil
}

func (s *RedisCatalogStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.itemKey(id)).Err(); err != nil {
		return fmt.Errorf("catalog delete %s: %w", id, err)
	}
	if err := s.client.SRem(ctx, s.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("catalog unindex %s: %w", id, err)
	}
	return nil
}

func (s *RedisCatalogStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("catalog len: %w", err)
	}
	return int(n), nil
}

// ──────────────────────────────────────────────
// RedisUserStateStore
// ──────────────────────────────────────────────

// RedisUserStateStore implements recsdk.UserStateStore on Redis. Snapshots
// are JSON values under "{prefix}:user:{id}", expiring per Config.TTL.
//
// Update is read-modify-write without optimistic locking; concurrent
// updates to the same user can lose writes. Interaction recording is
// per-user sequential in this deployment.
type RedisUserStateStore struct {
	client *goredis.Client
	cfg    Config
}

// NewRedisUserStateStore creates a user-state store on the given client.
func NewRedisUserStateStore(client *goredis.Client, cfg Config) *RedisUserStateStore {
	return &RedisUserStateStore{client: client, cfg: cfg.withDefaults()}
}

func (s *RedisUserStateStore) key(userID string) string {
	return fmt.Sprintf("%s:user:%s", s.cfg.Prefix, userID)
}

func (s *RedisUserStateStore) Get(ctx context.Context, userID string) (recsdk.UserState, bool, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return recsdk.UserState{}, false, nil
	}
	if err != nil {
		return recsdk.UserState{}, false, fmt.Errorf("user state get %s: %w", userID, err)
	}
	var state recsdk.UserState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return recsdk.UserState{}, false, fmt.Errorf("user state decode %s: %w", userID, err)
	}
	return state, true, nil
}

func (s *RedisUserStateStore) Put(ctx context.Context, userID string, state recsdk.UserState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("user state encode %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("user state put %s: %w", userID, err)
	}
	return nil
}

func (s *RedisUserStateStore) Update(ctx context.Context, userID string, fn func(*recsdk.UserState)) error {
	state, _, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	fn(&state)
	return s.Put(ctx, userID, state)
}

// ──────────────────────────────────────────────
// RedisDeliveryStore
// ──────────────────────────────────────────────

// sentTTL keeps already-sent markers long enough to cover the daily dedup
// window, then lets them expire.
const sentTTL = 48 * time.Hour

// RedisDeliveryStore implements recsdk.DeliveryStore on Redis. Enabled
// users live in the set "{prefix}:nudge:enabled"; sent markers are dated
// strings under "{prefix}:nudge:sent:{userID}".
//
// The DeliveryStore interface has no error channel; Redis failures are
// logged and surface as the conservative answer (not enabled, already
// sent) so a broken backend never double-sends.
type RedisDeliveryStore struct {
	client *goredis.Client
	cfg    Config
}

// NewRedisDeliveryStore creates a delivery store on the given client.
func NewRedisDeliveryStore(client *goredis.Client, cfg Config) *RedisDeliveryStore {
	return &RedisDeliveryStore{client: client, cfg: cfg.withDefaults()}
}

func (s *RedisDeliveryStore) enabledKey() string {
	return fmt.Sprintf("%s:nudge:enabled", s.cfg.Prefix)
}

func (s *RedisDeliveryStore) sentKey(userID string) string {
	return fmt.Sprintf("%s:nudge:sent:%s", s.cfg.Prefix, userID)
}

func (s *RedisDeliveryStore) IsEnabled(userID string) bool {
	ok, err := s.client.SIsMember(context.Background(), s.enabledKey(), userID).Result()
	if err != nil {
		log.Printf("[RedisDeliveryStore] IsEnabled failed | user=%s error=%v", userID, err)
		return false
	}
	return ok
}

func (s *RedisDeliveryStore) Enable(userID string) {
	if err := s.client.SAdd(context.Background(), s.enabledKey(), userID).Err(); err != nil {
		log.Printf("[RedisDeliveryStore] Enable failed | user=%s error=%v", userID, err)
	}
}

func (s *RedisDeliveryStore) Disable(userID string) {
	if err := s.client.SRem(context.Background(), s.enabledKey(), userID).Err(); err != nil {
		log.Printf("[RedisDeliveryStore] Disable failed | user=%s error=%v", userID, err)
	}
}

func (s *RedisDeliveryStore) EnabledUsers() []string {
	users, err := s.client.SMembers(context.Background(), s.enabledKey()).Result()
	if err != nil {
		log.Printf("[RedisDeliveryStore] EnabledUsers failed | error=%v", err)
		return nil
	}
	sort.Strings(users)
	return users
}

func (s *RedisDeliveryStore) RecordSent(userID string, sentAt time.Time) {
	val := sentAt.Format("2006-01-02")
	if err := s.client.Set(context.Background(), s.sentKey(userID), val, sentTTL).Err(); err != nil {
		log.Printf("[RedisDeliveryStore] RecordSent failed | user=%s error=%v", userID, err)
	}
}

func (s *RedisDeliveryStore) AlreadySentToday(userID string, now time.Time) bool {
	val, err := s.client.Get(context.Background(), s.sentKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return false
	}
	if err != nil {
		log.Printf("[RedisDeliveryStore] AlreadySentToday failed | user=%s error=%v", userID, err)
		return true
	}
	return val == now.Format("2006-01-02")
}
