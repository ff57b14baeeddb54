package recsdk

// ──────────────────────────────────────────────
// Emotional state relatedness — fixed symmetric lookup
// ──────────────────────────────────────────────

// relatedEmotions groups moods that are close enough to count as a partial
// match during scoring. Lookup is symmetric: listing "worried" under
// "anxious" also relates "anxious" to "worried".
var relatedEmotions = map[string][]string{
	"anxious":  {"stressed", "worried", "overwhelmed"},
	"sad":      {"depressed", "down", "melancholy"},
	"angry":    {"frustrated", "irritated", "annoyed"},
	"happy":    {"joyful", "excited", "content"},
	"stressed": {"anxious", "overwhelmed", "tense"},
	"tired":    {"exhausted", "fatigued", "drained"},
}

// IsRelatedEmotionalState reports whether two moods are related per the
// fixed table. The check runs in both directions, so the relation is
// symmetric even where the table only lists one side.
func IsRelatedEmotionalState(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if contains(relatedEmotions[a], b) {
		return true
	}
	return contains(relatedEmotions[b], a)
}

// emotionalContexts maps a mood to the framing sentence the formatter
// attaches to a recommendation shown in that mood.
var emotionalContexts = map[string]string{
	"anxious":     "This might help ease your anxiety.",
	"sad":         "This could help lift your spirits.",
	"stressed":    "Take a moment for yourself with this.",
	"angry":       "This might help you find some calm.",
	"overwhelmed": "When you're ready, this simple activity might help.",
}

// genericEmotionalContext is used for any mood outside the table.
const genericEmotionalContext = "This might be helpful for you right now."
