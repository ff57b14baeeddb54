package recsdk

import (
	"sort"
)

// ──────────────────────────────────────────────
// Scoring Engine — additive relevance scoring + stable ranking
// ──────────────────────────────────────────────

// ScoreWeights controls the contribution of each scoring signal.
// Penalty fields hold positive magnitudes and are subtracted.
type ScoreWeights struct {
	Base              float64 // every item starts here
	EmotionExact      float64 // user mood is in item.EmotionalStates
	EmotionRelated    float64 // mood related via the fixed table
	InterestTag       float64 // per tag shared with user.Interests
	RecencyPenalty    float64 // item was recently viewed
	CompletionPenalty float64 // item is in a completed set
	InProgressBoost   float64 // item is partially completed
	DifficultyFit     float64 // difficulty 0-1 above skill level
	TimeFit           float64 // fits within available time
	TimeOverrun       float64 // exceeds available time
	PopularityCap     float64 // upper bound on the popularity term
}

// DefaultScoreWeights returns the production weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Base:              1,
		EmotionExact:      5,
		EmotionRelated:    2,
		InterestTag:       2,
		RecencyPenalty:    10,
		CompletionPenalty: 8,
		InProgressBoost:   3,
		DifficultyFit:     2,
		TimeFit:           2,
		TimeOverrun:       1,
		PopularityCap:     2,
	}
}

// Scorer computes a relevance score per content item for a user snapshot.
// It is stateless: identical inputs always produce identical output, and
// neither the catalog nor the user state is ever mutated.
type Scorer struct {
	Weights ScoreWeights
}

// NewScorer creates a scorer. A zero-value weights struct selects the
// production defaults.
func NewScorer(weights ScoreWeights) *Scorer {
	if weights == (ScoreWeights{}) {
		weights = DefaultScoreWeights()
	}
	return &Scorer{Weights: weights}
}

// ScoredItem pairs a catalog entry with its computed score.
type ScoredItem struct {
	Item  ContentItem `json:"item"`
	Score float64     `json:"score"`
}

// Score computes the total relevance score for one item.
func (s *Scorer) Score(item ContentItem, user UserState) float64 {
	total, _ := s.ScoreWithBreakdown(item, user)
	return total
}

// ScoreWithBreakdown computes the total score plus a per-signal breakdown
// for auditing. Absent optional fields contribute zero to their term.
//
// The total accumulates in the fixed signal order below, never by ranging
// over the breakdown map: float addition is order-sensitive, and map
// iteration order would make identical inputs sum to ULP-different totals.
func (s *Scorer) ScoreWithBreakdown(item ContentItem, user UserState) (float64, map[string]float64) {
	w := s.Weights
	terms := map[string]float64{}
	total := 0.0
	add := func(name string, v float64) {
		terms[name] = v
		total += v
	}

	add("base", w.Base)

	// Emotional affinity: exact membership beats related-table membership.
	if user.EmotionalState != "" && len(item.EmotionalStates) > 0 {
		if contains(item.EmotionalStates, user.EmotionalState) {
			add("emotion", w.EmotionExact)
		} else {
			for _, state := range item.EmotionalStates {
				if IsRelatedEmotionalState(state, user.EmotionalState) {
					add("emotion", w.EmotionRelated)
					break
				}
			}
		}
	}

	// Interest overlap: per shared tag.
	if len(item.Tags) > 0 && len(user.Interests) > 0 {
		matches := 0
		for _, tag := range item.Tags {
			if contains(user.Interests, tag) {
				matches++
			}
		}
		add("interests", float64(matches)*w.InterestTag)
	}

	// Recency and completion penalties. With the eligibility filter in
	// front of ranking these never fire; they remain for callers that
	// rank an unfiltered catalog.
	if user.ViewedRecently(item.ID) {
		add("recency", -w.RecencyPenalty)
	}
	if user.Completed(item.ID) {
		add("completed", -w.CompletionPenalty)
	}
	if contains(user.InProgressCards, item.ID) {
		add("inProgress", w.InProgressBoost)
	}

	// Difficulty fit: prefer content slightly above the user's level,
	// penalize linearly when the gap grows past one step. Easier content
	// gets no adjustment.
	if item.Difficulty > 0 && user.SkillLevel > 0 {
		delta := item.Difficulty - user.SkillLevel
		if delta >= 0 && delta <= 1 {
			add("difficulty", w.DifficultyFit)
		} else if delta > 1 {
			add("difficulty", -float64(delta))
		}
	}

	// Time fit: soft signal only; the hard cap lives in the eligibility
	// evaluator.
	if item.TimeToComplete > 0 && user.AvailableTime > 0 {
		if item.TimeToComplete <= user.AvailableTime {
			add("time", w.TimeFit)
		} else {
			add("time", -w.TimeOverrun)
		}
	}

	// Popularity: bounded contribution.
	if item.Popularity > 0 {
		pop := float64(item.Popularity) / 100 * 2
		if pop > w.PopularityCap {
			pop = w.PopularityCap
		}
		add("popularity", pop)
	}

	return total, terms
}

// RankScored scores every catalog item and returns them sorted by score
// descending, truncated to topN. The sort is stable: items with equal
// scores keep their input order, so output is deterministic.
func (s *Scorer) RankScored(catalog []ContentItem, user UserState, topN int) []ScoredItem {
	if topN <= 0 || len(catalog) == 0 {
		return []ScoredItem{}
	}

	scored := make([]ScoredItem, len(catalog))
	for i, item := range catalog {
		scored[i] = ScoredItem{Item: item, Score: s.Score(item, user)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN < len(scored) {
		scored = scored[:topN]
	}
	return scored
}

// Rank returns the topN catalog items by relevance score.
func (s *Scorer) Rank(catalog []ContentItem, user UserState, topN int) []ContentItem {
	scored := s.RankScored(catalog, user, topN)
	items := make([]ContentItem, len(scored))
	for i, sc := range scored {
		items[i] = sc.Item
	}
	return items
}

// Rank scores and ranks with the default weights. See Scorer.Rank.
func Rank(catalog []ContentItem, user UserState, topN int) []ContentItem {
	return NewScorer(DefaultScoreWeights()).Rank(catalog, user, topN)
}
