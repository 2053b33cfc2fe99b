package model

import "time"

// ActionRole classifies an action type by its place in the check-in
// pairing state machine.  The numeric values match the action_role
// column; they form a closed set and every switch over an ActionRole
// must handle all four members.
type ActionRole int

const (
	RoleShiftStart ActionRole = 1 // opens a work shift
	RoleShiftEnd   ActionRole = 2 // closes a work shift
	RoleEventStart ActionRole = 3 // opens a temporary event (break, lunch, ...)
	RoleEventEnd   ActionRole = 4 // closes a temporary event
)

// PairingGroup identifies which pair of roles must alternate for a
// user: the shift pair or the temporary-event pair.
type PairingGroup int

const (
	GroupShift PairingGroup = iota + 1
	GroupEvent
)

// Valid reports whether r is one of the four known roles.
func (r ActionRole) Valid() bool {
	switch r {
	case RoleShiftStart, RoleShiftEnd, RoleEventStart, RoleEventEnd:
		return true
	}
	return false
}

// IsOpening reports whether the role creates an Ongoing check-in.
func (r ActionRole) IsOpening() bool {
	return r == RoleShiftStart || r == RoleEventStart
}

// IsClosing reports whether the role closes a previously opened
// check-in of its counterpart role.
func (r ActionRole) IsClosing() bool {
	return r == RoleShiftEnd || r == RoleEventEnd
}

// Counterpart returns the opening role that a closing role pairs
// with, or the closing role an opening role is closed by.
func (r ActionRole) Counterpart() ActionRole {
	switch r {
	case RoleShiftStart:
		return RoleShiftEnd
	case RoleShiftEnd:
		return RoleShiftStart
	case RoleEventStart:
		return RoleEventEnd
	case RoleEventEnd:
		return RoleEventStart
	}
	return 0
}

// Group returns the pairing group the role belongs to.
func (r ActionRole) Group() PairingGroup {
	switch r {
	case RoleShiftStart, RoleShiftEnd:
		return GroupShift
	case RoleEventStart, RoleEventEnd:
		return GroupEvent
	}
	return 0
}

// String returns a stable name for logs and error messages.
func (r ActionRole) String() string {
	switch r {
	case RoleShiftStart:
		return "shift_start"
	case RoleShiftEnd:
		return "shift_end"
	case RoleEventStart:
		return "event_start"
	case RoleEventEnd:
		return "event_end"
	}
	return "unknown"
}

// ActionType describes one kind of check-in a user can record, as
// stored in the `action_types` table.  Button metadata is kept for
// clients; the core only branches on ActionRole.  Deactivated types
// stay in the table because historical check-ins reference them.
//
// Fields:
//
//	ID           – primary key identifier.
//	Name         – unique human name of the action.
//	ButtonText   – label shown on the client button.
//	ButtonColor  – hex color of the client button.
//	DisplayOrder – sort order in client lists.
//	Role         – action_role column, see ActionRole.
//	RequiresPair – whether events of this type must be paired.
//	PairActionID – the counterpart action type, if declared explicitly.
//	IsActive     – soft-delete flag; inactive types cannot be used.
//	CreatedAt    – creation timestamp.
type ActionType struct {
	ID           uint64     `json:"id"`             // action_types.id
	Name         string     `json:"name"`           // action_types.name
	ButtonText   string     `json:"button_text"`    // action_types.button_text
	ButtonColor  string     `json:"button_color"`   // action_types.button_color
	DisplayOrder int        `json:"display_order"`  // action_types.display_order
	Role         ActionRole `json:"action_role"`    // action_types.action_role
	RequiresPair bool       `json:"requires_pair"`  // action_types.requires_pair
	PairActionID *uint64    `json:"pair_action_id"` // action_types.pair_action_id (nullable)
	IsActive     bool       `json:"is_active"`      // action_types.is_active
	CreatedAt    time.Time  `json:"created_at"`     // action_types.created_at
}
