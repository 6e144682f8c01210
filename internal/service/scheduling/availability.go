package scheduling

import (
	"time"

	"github.com/turnero/clinic-api/internal/model"
)

const minutesPerDay = 24 * 60

// fitsWindow reports whether [start, start+duration) lies fully inside the
// window. An interval crossing midnight never fits: windows do not span it.
func fitsWindow(w *model.AvailabilityWindow, start time.Time, durationMin int) (bool, error) {
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + durationMin
	if endMin > minutesPerDay {
		return false, nil
	}

	windowStart, err := w.StartMinutes()
	if err != nil {
		return false, err
	}
	windowEnd, err := w.EndMinutes()
	if err != nil {
		return false, err
	}
	return windowStart <= startMin && endMin <= windowEnd, nil
}

// fitsAvailability reports whether at least one window contains the
// candidate interval. Callers pass only windows matching the weekday.
func fitsAvailability(windows []*model.AvailabilityWindow, start time.Time, durationMin int) (bool, error) {
	for _, w := range windows {
		fits, err := fitsWindow(w, start, durationMin)
		if err != nil {
			return false, err
		}
		if fits {
			return true, nil
		}
	}
	return false, nil
}
