package scheduling

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

// clippedRange is an availability window for a concrete date, already
// intersected with the caller's search window, in minutes since midnight.
type clippedRange struct {
	start int
	end   int
}

// FreeSlots returns the bookable slots for a doctor on a calendar date as a
// lazy, restartable sequence ordered by start time. Existing non-cancelled
// appointments are fetched once up front; ranging over the sequence has no
// side effects. An unknown doctor or a day without windows yields an empty
// sequence.
func (s *Service) FreeSlots(ctx context.Context, doctorID uuid.UUID, date string, durationMin int, windowStart, windowEnd string) (iter.Seq[model.Slot], error) {
	day, err := time.ParseInLocation(model.DateLayout, date, time.Local)
	if err != nil {
		return nil, apperrors.MalformedInput("invalid date format, use YYYY-MM-DD", err)
	}
	if durationMin <= 0 {
		return nil, apperrors.MalformedInput("the duration must be greater than zero", nil)
	}

	searchStart, searchEnd := -1, -1
	if windowStart != "" {
		if searchStart, err = model.MinutesOfDay(windowStart); err != nil {
			return nil, apperrors.MalformedInput("invalid search window start, use HH:MM", err)
		}
	}
	if windowEnd != "" {
		if searchEnd, err = model.MinutesOfDay(windowEnd); err != nil {
			return nil, apperrors.MalformedInput("invalid search window end, use HH:MM", err)
		}
	}

	doctor, err := s.getDoctor(ctx, doctorID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			return emptySlots(), nil
		}
		return nil, err
	}

	windows := doctor.WindowsOn(day.Weekday())
	if len(windows) == 0 {
		return emptySlots(), nil
	}

	ranges := make([]clippedRange, 0, len(windows))
	for _, w := range windows {
		lo, err := w.StartMinutes()
		if err != nil {
			return nil, err
		}
		hi, err := w.EndMinutes()
		if err != nil {
			return nil, err
		}
		if searchStart >= 0 && searchStart > lo {
			lo = searchStart
		}
		if searchEnd >= 0 && searchEnd < hi {
			hi = searchEnd
		}
		if lo < hi {
			ranges = append(ranges, clippedRange{start: lo, end: hi})
		}
	}

	busy, err := s.appointments.ListForDoctorDay(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	return func(yield func(model.Slot) bool) {
		for _, r := range ranges {
			for cur := r.start; cur+durationMin <= r.end; cur += durationMin {
				slotStart := day.Add(time.Duration(cur) * time.Minute)
				slotEnd := slotStart.Add(time.Duration(durationMin) * time.Minute)
				if overlapsAny(busy, slotStart, slotEnd) {
					continue
				}
				slot := model.Slot{
					Start:     slotStart.Format(model.ClockLayout),
					End:       slotEnd.Format(model.ClockLayout),
					Timestamp: slotStart.Format(model.TimestampLayout),
				}
				if !yield(slot) {
					return
				}
			}
		}
	}, nil
}

func overlapsAny(appointments []*model.Appointment, start, end time.Time) bool {
	for _, a := range appointments {
		if a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if a.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func emptySlots() iter.Seq[model.Slot] {
	return func(yield func(model.Slot) bool) {}
}
