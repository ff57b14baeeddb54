package recsdk

import (
	"fmt"
)

// ──────────────────────────────────────────────
// Message Formatter — display envelope projection
// ──────────────────────────────────────────────

// FormatMessage builds the display envelope for a selected recommendation.
// It is a pure projection: fields are copied from the item with defaults
// filled in, and user-dependent framing is attached when the snapshot
// carries the relevant fields. Returns nil only for a nil item.
func FormatMessage(item *ContentItem, user UserState) *RecommendationMessage {
	if item == nil {
		return nil
	}

	msg := &RecommendationMessage{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Type:        item.Type,
		ActionURL:   item.ActionURL,
		ImageURL:    item.ImageURL,
		Tags:        item.Tags,
		Priority:    item.Priority,
	}

	if msg.Type == "" {
		msg.Type = TypeContent
	}
	if msg.ActionURL == "" {
		msg.ActionURL = "/content/" + item.ID
	}
	if msg.Priority == "" {
		msg.Priority = PriorityNormal
	}
	if msg.Tags == nil {
		msg.Tags = []string{}
	}

	if user.Name != "" {
		// Trailing comma-space: callers concatenate with the title.
		msg.PersonalGreeting = user.Name + ", "
	}

	if user.EmotionalState != "" {
		if ctx, ok := emotionalContexts[user.EmotionalState]; ok {
			msg.EmotionalContext = ctx
		} else {
			msg.EmotionalContext = genericEmotionalContext
		}
	}

	if item.TimeToComplete > 0 {
		msg.TimeContext = fmt.Sprintf("Takes about %d minutes", item.TimeToComplete)
	}

	return msg
}
