package recsdk

// ──────────────────────────────────────────────
// Core types — catalog entries, user snapshots, message envelopes
// ──────────────────────────────────────────────

// Content types. Used for icon/category selection only; the engine never
// branches on them.
const (
	TypeMindfulness = "mindfulness"
	TypeEmotional   = "emotional"
	TypeActivity    = "activity"
	TypeContent     = "content"
)

// Author-assigned priorities. Used only by the message formatter.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ContentItem is one catalog entry. Items are immutable snapshots owned by
// an external content store; the engine never mutates or caches them.
type ContentItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`

	// Tags are free-text interest keywords, order irrelevant.
	Tags []string `json:"tags,omitempty"`

	// EmotionalStates lists moods this item is broadly relevant to
	// (soft scoring affinity).
	EmotionalStates []string `json:"emotionalStates,omitempty"`

	// TriggerEmotionalStates, when non-empty, is a hard eligibility gate:
	// a user whose mood is not in this set never sees the item.
	TriggerEmotionalStates []string `json:"triggerEmotionalStates,omitempty"`

	Difficulty     int `json:"difficulty,omitempty"`     // author-assigned ordinal, 1-5
	TimeToComplete int `json:"timeToComplete,omitempty"` // minutes
	Popularity     int `json:"popularity,omitempty"`     // static precomputed signal, 0-100

	// MinActivityLevel, when set, excludes users below that activity level.
	MinActivityLevel int `json:"minActivityLevel,omitempty"`

	// SuitableForCrisis must be true for the item to surface while the
	// user is in crisis mode.
	SuitableForCrisis bool `json:"suitableForCrisis,omitempty"`

	Priority  string `json:"priority,omitempty"`
	ActionURL string `json:"actionUrl,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// UserState is an ephemeral per-call snapshot of a user's context and
// history, reconstructed by the caller from its own session/profile
// storage. All fields are optional; absent fields contribute neutrally to
// scoring and skip the eligibility checks that need them.
type UserState struct {
	Name           string   `json:"name,omitempty"`
	EmotionalState string   `json:"emotionalState,omitempty"`
	Interests      []string `json:"interests,omitempty"`

	CompletedCards   []string `json:"completedCards,omitempty"`
	CompletedLessons []string `json:"completedLessons,omitempty"`
	InProgressCards  []string `json:"inProgressCards,omitempty"`

	RecentlyViewed []string `json:"recentlyViewed,omitempty"`
	// LastViewedTime maps item id to ms-epoch view time; drives the
	// 24-hour cooldown in eligibility checks.
	LastViewedTime map[string]int64 `json:"lastViewedTime,omitempty"`

	SkillLevel    int  `json:"skillLevel,omitempty"`
	AvailableTime int  `json:"availableTime,omitempty"` // minutes
	ActivityLevel int  `json:"activityLevel,omitempty"` // 1-10
	InCrisis      bool `json:"inCrisis,omitempty"`
}

// Completed reports whether the id is in either completed set.
func (u UserState) Completed(id string) bool {
	return contains(u.CompletedCards, id) || contains(u.CompletedLessons, id)
}

// ViewedRecently reports whether the id is in the recently-viewed set,
// regardless of how long ago.
func (u UserState) ViewedRecently(id string) bool {
	return contains(u.RecentlyViewed, id)
}

// RecommendationMessage is the display-ready envelope produced by the
// message formatter. Missing optional fields are simply omitted.
type RecommendationMessage struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	ActionURL   string   `json:"actionUrl"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags"`
	Priority    string   `json:"priority"`

	// PersonalGreeting is "{name}, " when the user has a display name;
	// callers concatenate it with the title.
	PersonalGreeting string `json:"personalGreeting,omitempty"`
	EmotionalContext string `json:"emotionalContext,omitempty"`
	TimeContext      string `json:"timeContext,omitempty"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
