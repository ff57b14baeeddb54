package recsdk

import (
	"strings"
)

// ──────────────────────────────────────────────
// Mood Detector — lightweight rule-based scoring over journal text
// ──────────────────────────────────────────────

// DetectedMood holds the detected mood and confidence.
type DetectedMood struct {
	Mood       string             `json:"mood"`       // neutral/anxious/sad/angry/stressed/happy/tired
	Confidence float64            `json:"confidence"` // 0.0-1.0
	Scores     map[string]float64 `json:"scores"`     // all mood scores
}

type weightedKeyword struct {
	keyword string
	weight  float64
}

// MoodDetector infers a user's emotional state from free text (journal
// entries, chat messages) via weighted keyword scoring. It lets callers
// that hold only text construct UserState.EmotionalState for the engine.
type MoodDetector struct {
	patterns  map[string][]weightedKeyword
	threshold float64
}

// NewMoodDetector creates a detector with the built-in patterns.
func NewMoodDetector() *MoodDetector {
	return &MoodDetector{
		patterns:  defaultMoodPatterns(),
		threshold: 0.3,
	}
}

func defaultMoodPatterns() map[string][]weightedKeyword {
	return map[string][]weightedKeyword{
		"anxious": {
			{keyword: "anxious", weight: 0.5}, {keyword: "anxiety", weight: 0.5},
			{keyword: "panic", weight: 0.5}, {keyword: "worried", weight: 0.4},
			{keyword: "nervous", weight: 0.4}, {keyword: "on edge", weight: 0.4},
			{keyword: "can't stop thinking", weight: 0.3},
		},
		"sad": {
			{keyword: "sad", weight: 0.5}, {keyword: "depressed", weight: 0.5},
			{keyword: "hopeless", weight: 0.5}, {keyword: "crying", weight: 0.4},
			{keyword: "lonely", weight: 0.4}, {keyword: "empty", weight: 0.3},
			{keyword: "miss", weight: 0.2},
		},
		"angry": {
			{keyword: "angry", weight: 0.5}, {keyword: "furious", weight: 0.5},
			{keyword: "hate", weight: 0.4}, {keyword: "frustrated", weight: 0.4},
			{keyword: "unfair", weight: 0.3}, {keyword: "annoyed", weight: 0.3},
		},
		"stressed": {
			{keyword: "stressed", weight: 0.5}, {keyword: "overwhelmed", weight: 0.5},
			{keyword: "too much", weight: 0.4}, {keyword: "pressure", weight: 0.4},
			{keyword: "deadline", weight: 0.3}, {keyword: "burned out", weight: 0.5},
			{keyword: "burnout", weight: 0.5},
		},
		"happy": {
			// Lower weights: a single hit stays below the threshold.
			{keyword: "happy", weight: 0.3}, {keyword: "grateful", weight: 0.3},
			{keyword: "excited", weight: 0.3}, {keyword: "proud", weight: 0.3},
			{keyword: "wonderful", weight: 0.3}, {keyword: "great day", weight: 0.3},
		},
		"tired": {
			{keyword: "tired", weight: 0.5}, {keyword: "exhausted", weight: 0.5},
			{keyword: "drained", weight: 0.4}, {keyword: "can't sleep", weight: 0.4},
			{keyword: "no energy", weight: 0.4}, {keyword: "fatigued", weight: 0.4},
		},
	}
}

// Detect analyzes text for the user's dominant mood. Below the confidence
// threshold the mood is "neutral" with zero confidence.
func (d *MoodDetector) Detect(text string) *DetectedMood {
	lower := strings.ToLower(text)
	scores := map[string]float64{
		"neutral":  0,
		"anxious":  0,
		"sad":      0,
		"angry":    0,
		"stressed": 0,
		"happy":    0,
		"tired":    0,
	}

	for mood, keywords := range d.patterns {
		for _, kw := range keywords {
			if strings.Contains(lower, kw.keyword) {
				scores[mood] += kw.weight
			}
		}
	}

	// Exclamation boost: >=2 marks intensify the leading mood (cap +0.2).
	exclamCount := strings.Count(text, "!")
	if exclamCount >= 2 {
		boost := float64(exclamCount) * 0.1
		if boost > 0.2 {
			boost = 0.2
		}
		if top := maxMood(scores); top != "neutral" {
			scores[top] += boost
		}
	}

	topMood := "neutral"
	topScore := 0.0
	for mood, score := range scores {
		if mood == "neutral" {
			continue
		}
		if score > topScore {
			topScore = score
			topMood = mood
		}
	}

	confidence := topScore
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < d.threshold {
		topMood = "neutral"
		confidence = 0
	}

	return &DetectedMood{
		Mood:       topMood,
		Confidence: confidence,
		Scores:     scores,
	}
}

// ApplyTo writes the detected mood into a user snapshot, leaving an
// existing explicit mood untouched. Neutral detections are not applied.
func (m *DetectedMood) ApplyTo(user *UserState) {
	if user == nil || user.EmotionalState != "" {
		return
	}
	if m.Mood == "neutral" || m.Confidence == 0 {
		return
	}
	user.EmotionalState = m.Mood
}

func maxMood(scores map[string]float64) string {
	top := "neutral"
	topScore := 0.0
	for mood, score := range scores {
		if mood == "neutral" {
			continue
		}
		if score > topScore {
			topScore = score
			top = mood
		}
	}
	return top
}
