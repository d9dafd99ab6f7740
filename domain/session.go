package domain

import "time"

// Membership tiers ordered from least to most privileged.
const (
	TierGuest      = "guest"
	TierBasic      = "basic"
	TierPremium    = "premium"
	TierInstructor = "instructor"
)

var tierRank = map[string]int{
	TierGuest:      0,
	TierBasic:      1,
	TierPremium:    2,
	TierInstructor: 3,
}

// TierAtLeast reports whether tier meets or exceeds required.
// Unknown tiers rank below guest so a garbled claim never grants access.
func TierAtLeast(tier, required string) bool {
	tr, ok := tierRank[tier]
	if !ok {
		tr = -1
	}
	rr, ok := tierRank[required]
	if !ok {
		return false
	}
	return tr >= rr
}

// TrainingSession represents a scheduled class fetched from the core API.
// Read-only in this layer; the core API owns its lifecycle.
type TrainingSession struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	InstructorID string    `json:"instructor_id"`
	Instructor   string    `json:"instructor,omitempty"`
	Category     string    `json:"category,omitempty"`
	RequiredTier string    `json:"required_tier"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	RecordingID  string    `json:"recording_id,omitempty"`
	TranscriptID string    `json:"transcript_id,omitempty"`
}

func (s *TrainingSession) HasRecording() bool {
	return s != nil && s.RecordingID != ""
}

// NotStarted reports whether the session has not yet opened at the reference time.
func (s *TrainingSession) NotStarted(reference time.Time) bool {
	if s == nil {
		return true
	}
	return reference.Before(s.StartsAt)
}

// Ended reports whether the session's live window is over at the reference time.
func (s *TrainingSession) Ended(reference time.Time) bool {
	if s == nil {
		return true
	}
	return !s.EndsAt.IsZero() && reference.After(s.EndsAt)
}

// RelatedQuery narrows a related-sessions lookup.
type RelatedQuery struct {
	Category     string
	InstructorID string
	Limit        int
	Exclude      string
}
