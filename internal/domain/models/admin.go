package models

import "time"

// AdminAction is the append-only audit record for privileged overrides, OTP
// regenerations and system-detected events.
type AdminAction struct {
	ID          int64     `json:"id"`
	AdminID     string    `json:"admin_id"`
	ActionType  string    `json:"action_type"`
	TargetTable string    `json:"target_table"`
	TargetID    int64     `json:"target_id"`
	Details     string    `json:"details"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification is the durable counterpart to a best-effort push message.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
