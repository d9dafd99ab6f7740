package domain

import (
	"time"

	"github.com/google/uuid"
)

// WatchProgress records how far a viewer has gotten through a recording.
// Keyed by (SessionID, UserID); one record per pair.
type WatchProgress struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	UserID              string    `json:"user_id"`
	LastWatchedPosition float64   `json:"last_watched_position"`
	TotalWatchTime      float64   `json:"total_watch_time"`
	Completed           bool      `json:"completed"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProgressUpdate is a candidate write against a WatchProgress record.
type ProgressUpdate struct {
	SessionID           string  `json:"session_id"`
	UserID              string  `json:"user_id"`
	LastWatchedPosition float64 `json:"last_watched_position"`
	TotalWatchTime      float64 `json:"total_watch_time"`
	Completed           bool    `json:"completed"`
}

// Validate enforces the write contract: a user is required and both counters
// must be non-negative.
func (u ProgressUpdate) Validate() error {
	if u.UserID == "" {
		return WrapError(ErrCodeInvalid, "userId is required", nil)
	}
	if u.LastWatchedPosition < 0 {
		return WrapError(ErrCodeInvalid, "lastWatchedPosition must be >= 0", nil)
	}
	if u.TotalWatchTime < 0 {
		return WrapError(ErrCodeInvalid, "totalWatchTime must be >= 0", nil)
	}
	return nil
}

// MergeProgress applies an update to the existing record (nil for a first
// write) and returns the record to store. TotalWatchTime is monotonic: the
// stored value is the max of the candidate and what is already recorded, so
// replayed or out-of-order writes can never shrink it. Position and the
// completed flag are last-write-wins. The record ID is minted once and kept
// for the life of the key.
func MergeProgress(existing *WatchProgress, update ProgressUpdate, now time.Time) WatchProgress {
	merged := WatchProgress{
		SessionID:           update.SessionID,
		UserID:              update.UserID,
		LastWatchedPosition: update.LastWatchedPosition,
		TotalWatchTime:      update.TotalWatchTime,
		Completed:           update.Completed,
		UpdatedAt:           now,
	}
	if existing == nil {
		merged.ID = uuid.NewString()
		return merged
	}
	merged.ID = existing.ID
	if merged.ID == "" {
		merged.ID = uuid.NewString()
	}
	if existing.TotalWatchTime > merged.TotalWatchTime {
		merged.TotalWatchTime = existing.TotalWatchTime
	}
	return merged
}

// ZeroProgress is what a read of a never-written key returns.
func ZeroProgress(sessionID, userID string) WatchProgress {
	return WatchProgress{
		SessionID: sessionID,
		UserID:    userID,
	}
}
