package domain

import "time"

// Attendance records that a viewer joined a session and how long they stayed.
type Attendance struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`
	WatchTime      float64   `json:"watch_time"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// AttendanceJoin is the payload recording a viewer joining a session.
type AttendanceJoin struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (j AttendanceJoin) Validate() error {
	if j.UserID == "" {
		return WrapError(ErrCodeInvalid, "userId is required", nil)
	}
	return nil
}

// AttendanceIncrement adds watch time to an existing attendance record.
type AttendanceIncrement struct {
	SessionID          string  `json:"session_id"`
	UserID             string  `json:"user_id"`
	WatchTimeIncrement float64 `json:"watch_time_increment"`
}

func (i AttendanceIncrement) Validate() error {
	if i.UserID == "" {
		return WrapError(ErrCodeInvalid, "userId is required", nil)
	}
	if i.WatchTimeIncrement < 0 {
		return WrapError(ErrCodeInvalid, "watchTimeIncrement must be >= 0", nil)
	}
	return nil
}
