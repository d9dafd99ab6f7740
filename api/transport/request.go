package transport

// ProgressWriteRequest is the body of a watch-progress write. Pointer
// fields distinguish "absent" from zero so malformed payloads can be
// rejected instead of silently defaulted.
type ProgressWriteRequest struct {
	UserID              string   `json:"userId"`
	LastWatchedPosition *float64 `json:"lastWatchedPosition"`
	TotalWatchTime      *float64 `json:"totalWatchTime"`
	Completed           bool     `json:"completed"`
}

// AttendanceJoinRequest records a viewer joining a session.
type AttendanceJoinRequest struct {
	UserID   string `json:"userId"`
	JoinedAt string `json:"joinedAt"`
}

// AttendanceIncrementRequest adds watch time to an attendance record.
type AttendanceIncrementRequest struct {
	WatchTimeIncrement *float64 `json:"watchTimeIncrement"`
}
