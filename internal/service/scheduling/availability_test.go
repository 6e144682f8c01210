package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnero/clinic-api/internal/model"
)

func mondayAt(clock string) time.Time {
	t, err := time.ParseInLocation(model.TimestampLayout, "2025-03-10T"+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFitsWindow(t *testing.T) {
	window := &model.AvailabilityWindow{Weekday: 1, StartTime: "09:00", EndTime: "17:00"}

	tests := []struct {
		name     string
		start    string
		duration int
		want     bool
	}{
		{"inside", "10:00", 30, true},
		{"at window start", "09:00", 30, true},
		{"ends at window end", "16:30", 30, true},
		{"before window", "08:30", 30, false},
		{"spills past end", "16:45", 30, false},
		{"starts at end", "17:00", 30, false},
		{"covers whole window", "09:00", 480, true},
		{"longer than window", "09:00", 481, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fitsWindow(window, mondayAt(tt.start), tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFitsWindowMidnightCrossing(t *testing.T) {
	window := &model.AvailabilityWindow{Weekday: 1, StartTime: "22:00", EndTime: "23:59"}

	// An interval reaching past midnight never fits, regardless of the
	// window bounds.
	got, err := fitsWindow(window, mondayAt("23:30"), 60)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestFitsAvailability(t *testing.T) {
	windows := []*model.AvailabilityWindow{
		{Weekday: 1, StartTime: "09:00", EndTime: "12:00"},
		{Weekday: 1, StartTime: "14:00", EndTime: "18:00"},
	}

	got, err := fitsAvailability(windows, mondayAt("15:00"), 30)
	require.NoError(t, err)
	assert.True(t, got)

	// The lunch gap belongs to no window.
	got, err = fitsAvailability(windows, mondayAt("12:30"), 30)
	require.NoError(t, err)
	assert.False(t, got)

	// Straddling two windows does not fit either of them.
	got, err = fitsAvailability(windows, mondayAt("11:45"), 30)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = fitsAvailability(nil, mondayAt("10:00"), 30)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestOverlapSymmetry(t *testing.T) {
	a := &model.Appointment{StartTime: mondayAt("10:00"), DurationMin: 30}
	b := &model.Appointment{StartTime: mondayAt("10:15"), DurationMin: 30}

	assert.True(t, a.Overlaps(b.StartTime, b.EndTime()))
	assert.True(t, b.Overlaps(a.StartTime, a.EndTime()))

	// Touching endpoints do not overlap in either direction.
	c := &model.Appointment{StartTime: mondayAt("10:30"), DurationMin: 30}
	assert.False(t, a.Overlaps(c.StartTime, c.EndTime()))
	assert.False(t, c.Overlaps(a.StartTime, a.EndTime()))
}
