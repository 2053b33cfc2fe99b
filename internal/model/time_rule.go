package model

import "time"

// TimeRule is the compliance rule attached to an action type, as
// stored in the `time_rules` table.  The rule shape depends on the
// role of the referenced action type: shift roles carry an expected
// start/end clock window, EventStart carries a maximum duration, and
// EventEnd takes no rule at all.  At most one active rule may exist
// per action type; the catalog service enforces this on every write.
//
// Fields:
//
//	ID                 – primary key identifier.
//	RuleName           – human label for admin screens.
//	ActionTypeID       – action type the rule applies to.
//	ExpectedStart      – "HH:MM:SS" window start (shift roles only).
//	ExpectedEnd        – "HH:MM:SS" window end (shift roles only); an
//	                     end earlier than the start denotes a shift
//	                     that crosses midnight.
//	MaxDurationMinutes – allowed minutes for a temporary event
//	                     (EventStart role only).
//	Timezone           – IANA zone the clock strings are read in.
//	IsActive           – whether the rule is currently applied.
//	CreatedAt          – creation timestamp.
type TimeRule struct {
	ID                 uint64    `json:"id"`                   // time_rules.id
	RuleName           string    `json:"rule_name"`            // time_rules.rule_name
	ActionTypeID       uint64    `json:"action_type_id"`       // time_rules.action_type_id
	ExpectedStart      *string   `json:"expected_start_time"`  // time_rules.expected_start_time (nullable)
	ExpectedEnd        *string   `json:"expected_end_time"`    // time_rules.expected_end_time (nullable)
	MaxDurationMinutes *int      `json:"max_duration_minutes"` // time_rules.max_duration_minutes (nullable)
	Timezone           string    `json:"timezone"`             // time_rules.timezone
	IsActive           bool      `json:"is_active"`            // time_rules.is_active
	CreatedAt          time.Time `json:"created_at"`           // time_rules.created_at
}
