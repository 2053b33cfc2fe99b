// Package compliance evaluates check-in events against the time rule
// attached to their action type.  It is pure: nothing in this package
// touches the database, the clock, or any other process state, which
// keeps the cross-day window math directly testable.
package compliance

import (
	"fmt"
	"strconv"
	"strings"
)

// minutesPerDay is the size of one clock day; the wrapped side of a
// cross-day window is shifted by this amount before comparison.
const minutesPerDay = 24 * 60

// MinuteOfDay is a clock time expressed as whole minutes since
// midnight, in the range [0, 1440).
type MinuteOfDay int

// ParseClock converts an "HH:MM" or "HH:MM:SS" string into minutes
// since midnight.  Seconds are accepted for compatibility with the
// stored rule format but truncated.  Malformed strings or components
// out of range return an error.
func ParseClock(s string) (MinuteOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in clock time %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in clock time %q", s)
		}
	}
	return MinuteOfDay(h*60 + m), nil
}

// String renders the minute as "HH:MM".
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ShiftWindow is the expected clock window of a shift.  When the end
// is numerically earlier than the start the window wraps past
// midnight; comparisons then treat the end (and any close-side
// observation earlier than the start) as belonging to the next day.
type ShiftWindow struct {
	Start MinuteOfDay
	End   MinuteOfDay
	Wraps bool
}

// NewShiftWindow builds a window from the two rule clock strings.
func NewShiftWindow(start, end string) (ShiftWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return ShiftWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return ShiftWindow{}, err
	}
	return ShiftWindow{Start: s, End: e, Wraps: e < s}, nil
}

// AdjustedEnd returns the window end shifted to the close-side day
// scale: for a wrapping window the end gains a full day, so an
// overnight 22:00–06:00 window compares its end as minute 1800.
func (w ShiftWindow) AdjustedEnd() int {
	if w.Wraps {
		return int(w.End) + minutesPerDay
	}
	return int(w.End)
}

// adjustClose maps a closing observation onto the same scale as
// AdjustedEnd.  For a wrapping window, a close before the window
// start belongs to the day after the open and gains a full day.
func (w ShiftWindow) adjustClose(m MinuteOfDay) int {
	if w.Wraps && m < w.Start {
		return int(m) + minutesPerDay
	}
	return int(m)
}

// IsEarlyLeave reports whether a close at the given clock minute
// falls strictly before the expected end of the window.
func (w ShiftWindow) IsEarlyLeave(close MinuteOfDay) bool {
	return w.adjustClose(close) < w.AdjustedEnd()
}

// IsOvertime reports whether a close at the given clock minute falls
// strictly after the expected end of the window.  Early leave and
// overtime bound opposite sides of the end and are never both true.
func (w ShiftWindow) IsOvertime(close MinuteOfDay) bool {
	return w.adjustClose(close) > w.AdjustedEnd()
}

// IsLateStart reports whether an open at the given clock minute
// falls strictly after the expected start.  There is no tolerance
// band: one minute past the expected start is late.
func (w ShiftWindow) IsLateStart(open MinuteOfDay) bool {
	return open > w.Start
}
