// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckInRecordedEvent is published for every check-in the ledger
// records, opening and closing alike. It carries enough information
// for downstream consumers to log, notify, or trigger analytics
// without querying the primary database.
type CheckInRecordedEvent struct {
	CheckInID       uint64 `json:"check_in_id"`
	UserID          uint64 `json:"user_id"`
	Username        string `json:"username"`
	ActionTypeID    uint64 `json:"action_type_id"`
	ActionName      string `json:"action_name"`
	ActionRole      string `json:"action_role"`
	Status          string `json:"status"`
	CheckTime       string `json:"check_time"`
	PairCheckInID   uint64 `json:"pair_check_in_id,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	IsLate          bool   `json:"is_late"`
	IsEarlyLeave    bool   `json:"is_early_leave"`
	IsManual        bool   `json:"is_manual"`
	RecordedAt      string `json:"recorded_at"`
}
