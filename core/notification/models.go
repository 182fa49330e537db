package notification

import "time"

// Notification is a per-user timestamped message with a read/unread flag,
// generated as a side effect of mutations on other records.
type Notification struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"userId" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"` // UTC
	Read      bool      `json:"read" db:"read"`
}
