package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    MinuteOfDay
		wantErr bool
	}{
		{in: "09:00", want: 540},
		{in: "09:00:00", want: 540},
		{in: "00:00", want: 0},
		{in: "23:59:59", want: 1439},
		{in: " 18:00:00 ", want: 1080},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:00:61", wantErr: true},
		{in: "12", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNewShiftWindow_WrapDetection(t *testing.T) {
	w, err := NewShiftWindow("09:00:00", "18:00:00")
	require.NoError(t, err)
	assert.False(t, w.Wraps)
	assert.Equal(t, 1080, w.AdjustedEnd())

	w, err = NewShiftWindow("22:00:00", "06:00:00")
	require.NoError(t, err)
	assert.True(t, w.Wraps)
	assert.Equal(t, 1800, w.AdjustedEnd(), "wrapped end gains a full day")
}

func TestShiftWindow_DayShift(t *testing.T) {
	w, err := NewShiftWindow("09:00", "18:00")
	require.NoError(t, err)

	assert.False(t, w.IsLateStart(540), "exactly on time is not late")
	assert.True(t, w.IsLateStart(541))

	assert.True(t, w.IsEarlyLeave(1070), "17:50 before 18:00")
	assert.False(t, w.IsEarlyLeave(1080), "exactly at end")
	assert.False(t, w.IsOvertime(1080), "exactly at end is not overtime either")
	assert.True(t, w.IsOvertime(1081))
}

func TestShiftWindow_OvernightShift(t *testing.T) {
	w, err := NewShiftWindow("22:00", "06:00")
	require.NoError(t, err)

	// 23:30 is inside the window, before the adjusted end.
	assert.True(t, w.IsEarlyLeave(1410))
	// 05:00 next day maps to minute 1740, still before 06:00 next day.
	assert.True(t, w.IsEarlyLeave(300))
	assert.False(t, w.IsOvertime(300))
	// 06:20 next day maps past the adjusted end.
	assert.False(t, w.IsEarlyLeave(380))
	assert.True(t, w.IsOvertime(380))
	// 06:00 sharp is neither early nor overtime.
	assert.False(t, w.IsEarlyLeave(360))
	assert.False(t, w.IsOvertime(360))
}
