// Command recommendd serves the recommendation engine over HTTP and,
// when configured, runs the proactive nudge scheduler.
package main

import (
	"context"
	"encoding/json"
	"os"

	recsdk "github.com/betterwithin/recommend-sdk-go"
	"github.com/betterwithin/recommend-sdk-go/service"
	"github.com/betterwithin/recommend-sdk-go/store"
)

func main() {
	cfg := service.LoadConfig()

	log, err := service.NewLogger(cfg.LogMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	var (
		catalog recsdk.CatalogStore
		states  recsdk.UserStateStore
		nudges  recsdk.DeliveryStore
	)

	if cfg.RedisAddr != "" {
		client, err := store.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis connect failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer client.Close()

		storeCfg := store.Config{Prefix: cfg.RedisPrefix}
		catalog = store.NewRedisCatalogStore(client, storeCfg)
		states = store.NewRedisUserStateStore(client, storeCfg)
		nudges = store.NewRedisDeliveryStore(client, storeCfg)
		log.Info("using redis stores", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
	} else {
		catalog = recsdk.NewInMemoryCatalogStore()
		states = recsdk.NewInMemoryUserStateStore()
		nudges = recsdk.NewInMemoryDeliveryStore()
		log.Info("using in-memory stores")
	}

	if cfg.CatalogFile != "" {
		if err := seedCatalog(ctx, catalog, cfg.CatalogFile); err != nil {
			log.Error("catalog seed failed", "file", cfg.CatalogFile, "error", err)
			os.Exit(1)
		}
		n, _ := catalog.Len(ctx)
		log.Info("catalog seeded", "file", cfg.CatalogFile, "items", n)
	}

	recommender := recsdk.NewRecommender(recsdk.RecommenderOptions{Catalog: catalog})
	recorder := recsdk.NewInteractionRecorder(states, 0, nil)

	if cfg.NudgeEvery > 0 {
		sched := recsdk.NewNudgeScheduler(recsdk.NudgeSchedulerOptions{
			Interval: cfg.NudgeEvery,
			Delivery: nudges,
			States:   states,
			Catalog:  catalog,
			// Delivery transport is owned by the caller; the default
			// sender just logs what would go out.
			SendFn: func(userID string, msg *recsdk.RecommendationMessage) error {
				log.Info("nudge", "user", userID, "item", msg.ID, "title", msg.Title)
				return nil
			},
		})
		sched.Start()
		defer sched.Stop()
		log.Info("nudge scheduler started", "interval", cfg.NudgeEvery.String())
	}

	server := service.NewServer(service.RouterConfig{
		Log:              log,
		RecommendHandler: service.NewRecommendHandler(log, recommender, catalog),
		FeedbackHandler:  service.NewFeedbackHandler(log, recorder),
		HealthHandler:    service.NewHealthHandler(catalog),
	})

	log.Info("listening", "port", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// seedCatalog loads a JSON array of content items into the catalog store.
func seedCatalog(ctx context.Context, catalog recsdk.CatalogStore, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var items []recsdk.ContentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	for _, item := range items {
		if err := catalog.Put(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
