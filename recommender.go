package recsdk

import (
	"context"
	"errors"
	"time"
)

// ──────────────────────────────────────────────
// Recommender — eligibility filter → ranking → formatting pipeline
// ──────────────────────────────────────────────

// DefaultTopN is the result size used when a caller does not specify one.
const DefaultTopN = 3

// ErrNoCatalogSource is returned by RecommendFromSource when no catalog
// source was injected.
var ErrNoCatalogSource = errors.New("recsdk: no catalog source configured")

// CatalogSource supplies a fresh catalog snapshot per call. The caller
// owns persistence; the recommender never caches what it reads.
type CatalogSource interface {
	Snapshot(ctx context.Context) ([]ContentItem, error)
}

// Recommender runs the full pipeline: hard eligibility filtering, stable
// relevance ranking, and optional message formatting. All steps are pure;
// the only state is the configured weights and the optional catalog source.
//
// Usage:
//
//	rec := recsdk.NewRecommender(recsdk.RecommenderOptions{})
//	items := rec.Recommend(catalog, user, 3, time.Now())
type Recommender struct {
	Scorer  *Scorer
	Catalog CatalogSource
}

// RecommenderOptions groups optional dependencies for Recommender.
type RecommenderOptions struct {
	Weights ScoreWeights  // zero value = production defaults
	Catalog CatalogSource // optional, enables RecommendFromSource
}

// NewRecommender creates a recommender with the given options.
func NewRecommender(opts RecommenderOptions) *Recommender {
	return &Recommender{
		Scorer:  NewScorer(opts.Weights),
		Catalog: opts.Catalog,
	}
}

// Recommend filters the catalog through the trigger evaluator, ranks the
// survivors, and returns the topN items. topN <= 0 yields an empty slice.
func (r *Recommender) Recommend(catalog []ContentItem, user UserState, topN int, now time.Time) []ContentItem {
	eligible := FilterEligible(catalog, user, now)
	return r.Scorer.Rank(eligible, user, topN)
}

// RecommendScored is Recommend with scores attached, for auditing and
// debug surfaces.
func (r *Recommender) RecommendScored(catalog []ContentItem, user UserState, topN int, now time.Time) []ScoredItem {
	eligible := FilterEligible(catalog, user, now)
	return r.Scorer.RankScored(eligible, user, topN)
}

// RecommendMessages runs the pipeline and formats each selected item into
// a display envelope.
func (r *Recommender) RecommendMessages(catalog []ContentItem, user UserState, topN int, now time.Time) []*RecommendationMessage {
	items := r.Recommend(catalog, user, topN, now)
	msgs := make([]*RecommendationMessage, len(items))
	for i := range items {
		msgs[i] = FormatMessage(&items[i], user)
	}
	return msgs
}

// RecommendFromSource snapshots the injected catalog source and runs the
// pipeline against it.
func (r *Recommender) RecommendFromSource(ctx context.Context, user UserState, topN int, now time.Time) ([]ContentItem, error) {
	if r.Catalog == nil {
		return nil, ErrNoCatalogSource
	}
	catalog, err := r.Catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.Recommend(catalog, user, topN, now), nil
}
