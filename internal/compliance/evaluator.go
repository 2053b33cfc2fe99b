package compliance

import (
	"errors"
	"time"

	"github.com/openclock/attendance-service/internal/model"
)

// ErrMissingOpen is returned when a closing role is evaluated without
// the check time of its paired opening event.  The ledger resolves
// pairing before evaluation, so seeing this error means a bug in the
// caller, not a user mistake.
var ErrMissingOpen = errors.New("compliance: closing event evaluated without its opening time")

// Result carries the compliance outcome for one check-in event.
// DurationMinutes is set only for closing roles; opening roles always
// come out Ongoing with a nil duration.
type Result struct {
	Status          model.CheckInStatus
	IsLate          bool
	IsEarlyLeave    bool
	DurationMinutes *int
}

// Evaluate computes the compliance flags for an event of the given
// role at checkTime.  rule may be nil (no active rule for the type),
// in which case every flag stays false and closes are Completed.
// openedAt is the check time of the paired opening event and is
// required for closing roles.
//
// Shift windows may cross midnight: when the rule's expected end is
// earlier than its expected start, the end is treated as belonging
// to the next day for every comparison.
func Evaluate(role model.ActionRole, checkTime time.Time, rule *model.TimeRule, openedAt *time.Time) (Result, error) {
	switch role {
	case model.RoleShiftStart:
		return evalShiftStart(checkTime, rule)
	case model.RoleShiftEnd:
		if openedAt == nil {
			return Result{}, ErrMissingOpen
		}
		return evalShiftEnd(checkTime, rule, *openedAt)
	case model.RoleEventStart:
		// No start-of-window concept for temporary events.
		return Result{Status: model.StatusOngoing}, nil
	case model.RoleEventEnd:
		if openedAt == nil {
			return Result{}, ErrMissingOpen
		}
		return evalEventEnd(checkTime, rule, *openedAt)
	}
	return Result{}, errors.New("compliance: unknown action role")
}

func evalShiftStart(checkTime time.Time, rule *model.TimeRule) (Result, error) {
	res := Result{Status: model.StatusOngoing}
	if rule == nil || rule.ExpectedStart == nil {
		return res, nil
	}
	expected, err := ParseClock(*rule.ExpectedStart)
	if err != nil {
		return Result{}, err
	}
	res.IsLate = ShiftWindow{Start: expected}.IsLateStart(clockMinute(checkTime))
	return res, nil
}

func evalShiftEnd(checkTime time.Time, rule *model.TimeRule, openedAt time.Time) (Result, error) {
	dur := durationMinutes(openedAt, checkTime)
	res := Result{Status: model.StatusCompleted, DurationMinutes: &dur}
	if rule == nil || rule.ExpectedStart == nil || rule.ExpectedEnd == nil {
		return res, nil
	}
	w, err := NewShiftWindow(*rule.ExpectedStart, *rule.ExpectedEnd)
	if err != nil {
		return Result{}, err
	}
	closeMin := clockMinute(checkTime)
	res.IsEarlyLeave = w.IsEarlyLeave(closeMin)
	if w.IsOvertime(closeMin) {
		res.Status = model.StatusOvertime
	}
	return res, nil
}

func evalEventEnd(checkTime time.Time, rule *model.TimeRule, openedAt time.Time) (Result, error) {
	dur := durationMinutes(openedAt, checkTime)
	res := Result{Status: model.StatusCompleted, DurationMinutes: &dur}
	if rule != nil && rule.MaxDurationMinutes != nil && dur > *rule.MaxDurationMinutes {
		res.Status = model.StatusOvertime
	}
	return res, nil
}

// clockMinute truncates a timestamp to its minute of day.
func clockMinute(t time.Time) MinuteOfDay {
	return MinuteOfDay(t.Hour()*60 + t.Minute())
}

// durationMinutes is the floored, non-negative whole-minute distance
// between the opening and closing events.
func durationMinutes(open, close time.Time) int {
	d := close.Sub(open)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
