package recsdk

import (
	"time"
)

// ──────────────────────────────────────────────
// Trigger Evaluator — hard eligibility gates, independent of score
// ──────────────────────────────────────────────

// ViewCooldown is how long a viewed item stays ineligible.
const ViewCooldown = 24 * time.Hour

// Ineligibility reasons reported by EvaluateEligibility.
const (
	ReasonCompleted     = "completed"
	ReasonCooldown      = "cooldown"
	ReasonMoodMismatch  = "mood_mismatch"
	ReasonTimeCap       = "time_cap"
	ReasonActivityLevel = "activity_level"
	ReasonCrisis        = "crisis"
)

// IsEligible reports whether the item may be shown to the user at all.
// Time is threaded explicitly so callers and tests control the clock.
func IsEligible(item ContentItem, user UserState, now time.Time) bool {
	_, ok := EvaluateEligibility(item, user, now)
	return ok
}

// EvaluateEligibility runs the hard-filter checks in fixed order and
// short-circuits on the first failure, returning its reason. An eligible
// item returns ("", true).
//
// Check order:
//  1. completed content is never re-offered
//  2. 24-hour view cooldown
//  3. trigger mood gate (non-empty set is authoritative)
//  4. available-time hard cap
//  5. minimum activity level
//  6. crisis gate
func EvaluateEligibility(item ContentItem, user UserState, now time.Time) (string, bool) {
	if user.Completed(item.ID) {
		return ReasonCompleted, false
	}

	if user.ViewedRecently(item.ID) {
		if viewedAt, ok := user.LastViewedTime[item.ID]; ok {
			if now.UnixMilli()-viewedAt < ViewCooldown.Milliseconds() {
				return ReasonCooldown, false
			}
		}
	}

	// A non-empty trigger set excludes any user whose current mood is not
	// a member, including users with no recorded mood.
	if len(item.TriggerEmotionalStates) > 0 {
		if !contains(item.TriggerEmotionalStates, user.EmotionalState) {
			return ReasonMoodMismatch, false
		}
	}

	if item.TimeToComplete > 0 && user.AvailableTime > 0 {
		if item.TimeToComplete > user.AvailableTime {
			return ReasonTimeCap, false
		}
	}

	if item.MinActivityLevel > 0 && user.ActivityLevel > 0 {
		if user.ActivityLevel < item.MinActivityLevel {
			return ReasonActivityLevel, false
		}
	}

	if user.InCrisis && !item.SuitableForCrisis {
		return ReasonCrisis, false
	}

	return "", true
}

// FilterEligible returns the subset of the catalog that passes every hard
// filter, preserving input order. Callers should rank this pool, not the
// raw catalog.
func FilterEligible(catalog []ContentItem, user UserState, now time.Time) []ContentItem {
	eligible := make([]ContentItem, 0, len(catalog))
	for _, item := range catalog {
		if IsEligible(item, user, now) {
			eligible = append(eligible, item)
		}
	}
	return eligible
}
