package model

import "time"

// CheckInStatus is the lifecycle state of a check-in.  Ongoing is the
// only non-terminal state: once a record leaves Ongoing it is never
// modified again except for admin annotations.
type CheckInStatus string

const (
	StatusOngoing   CheckInStatus = "ongoing"   // opened, waiting for its closing event
	StatusCompleted CheckInStatus = "completed" // closed inside the allowed window
	StatusOvertime  CheckInStatus = "overtime"  // closed past the allowed window/duration
)

// CheckIn is one attendance event as stored in the `check_ins`
// table.  Opening events are inserted with StatusOngoing and no
// duration; the matching closing event sets PairCheckInID on both
// rows and stamps the duration.
//
// Fields:
//
//	ID              – primary key identifier.
//	UserID          – user who recorded the event.
//	ActionTypeID    – action type of the event.
//	CheckTime       – moment the event applies to (company timezone).
//	Status          – lifecycle state, see CheckInStatus.
//	PairCheckInID   – id of the paired event once closed (nullable).
//	DurationMinutes – whole minutes between open and close (nullable,
//	                  set only when the record leaves Ongoing).
//	Note            – free-form annotation (nullable).
//	IsLate          – opened after the expected start of the window.
//	IsEarlyLeave    – closed before the expected end of the window.
//	IsManual        – backfilled by an admin with an explicit time.
//	CreatedAt       – row insertion timestamp.
type CheckIn struct {
	ID              uint64        `json:"id"`               // check_ins.id
	UserID          uint64        `json:"user_id"`          // check_ins.user_id
	ActionTypeID    uint64        `json:"action_type_id"`   // check_ins.action_type_id
	CheckTime       time.Time     `json:"check_time"`       // check_ins.check_time
	Status          CheckInStatus `json:"status"`           // check_ins.status
	PairCheckInID   *uint64       `json:"pair_check_in_id"` // check_ins.pair_check_in_id (nullable)
	DurationMinutes *int          `json:"duration_minutes"` // check_ins.duration_minutes (nullable)
	Note            *string       `json:"note"`             // check_ins.note (nullable)
	IsLate          bool          `json:"is_late"`          // check_ins.is_late
	IsEarlyLeave    bool          `json:"is_early_leave"`   // check_ins.is_early_leave
	IsManual        bool          `json:"is_manual"`        // check_ins.is_manual
	CreatedAt       time.Time     `json:"created_at"`       // check_ins.created_at
}
