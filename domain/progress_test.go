package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeProgress_FirstWrite(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	update := ProgressUpdate{
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: 120,
		TotalWatchTime:      300,
	}

	merged := MergeProgress(nil, update, now)

	require.NotEmpty(t, merged.ID)
	assert.Equal(t, "s1", merged.SessionID)
	assert.Equal(t, "u1", merged.UserID)
	assert.Equal(t, float64(120), merged.LastWatchedPosition)
	assert.Equal(t, float64(300), merged.TotalWatchTime)
	assert.False(t, merged.Completed)
	assert.Equal(t, now, merged.UpdatedAt)
}

func TestMergeProgress_TotalWatchTimeNeverDecreases(t *testing.T) {
	now := time.Now()
	existing := &WatchProgress{
		ID:                  "id-1",
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: 120,
		TotalWatchTime:      300,
	}

	merged := MergeProgress(existing, ProgressUpdate{
		SessionID:           "s1",
		UserID:              "u1",
		LastWatchedPosition: 90,
		TotalWatchTime:      200,
	}, now)

	// Position is last-write-wins, total is monotonic-max.
	assert.Equal(t, float64(90), merged.LastWatchedPosition)
	assert.Equal(t, float64(300), merged.TotalWatchTime)
	assert.Equal(t, "id-1", merged.ID)
}

func TestMergeProgress_HigherTotalWins(t *testing.T) {
	existing := &WatchProgress{ID: "id-1", SessionID: "s1", UserID: "u1", TotalWatchTime: 200}

	merged := MergeProgress(existing, ProgressUpdate{
		SessionID:      "s1",
		UserID:         "u1",
		TotalWatchTime: 450,
	}, time.Now())

	assert.Equal(t, float64(450), merged.TotalWatchTime)
}

func TestMergeProgress_CompletedLastWriteWins(t *testing.T) {
	existing := &WatchProgress{ID: "id-1", SessionID: "s1", UserID: "u1", Completed: true}

	merged := MergeProgress(existing, ProgressUpdate{
		SessionID: "s1",
		UserID:    "u1",
		Completed: false,
	}, time.Now())

	assert.False(t, merged.Completed)
}

func TestProgressUpdate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		update  ProgressUpdate
		wantErr bool
	}{
		{"valid", ProgressUpdate{UserID: "u1", LastWatchedPosition: 10, TotalWatchTime: 20}, false},
		{"zero values valid", ProgressUpdate{UserID: "u1"}, false},
		{"missing user", ProgressUpdate{LastWatchedPosition: 10}, true},
		{"negative position", ProgressUpdate{UserID: "u1", LastWatchedPosition: -1}, true},
		{"negative total", ProgressUpdate{UserID: "u1", TotalWatchTime: -0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsDomainError(err, ErrCodeInvalid))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestZeroProgress(t *testing.T) {
	zero := ZeroProgress("s1", "u1")
	assert.Equal(t, float64(0), zero.LastWatchedPosition)
	assert.Equal(t, float64(0), zero.TotalWatchTime)
	assert.False(t, zero.Completed)
}
