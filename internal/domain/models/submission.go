package models

import "time"

// Submission is one audit row written after the tour backend accepted a
// wizard submission.
type Submission struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	BookingID int64     `json:"booking_id"`
	Flow      string    `json:"flow"`
	Total     string    `json:"total"`
	Travelers int       `json:"travelers"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
