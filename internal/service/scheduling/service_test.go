package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnero/clinic-api/internal/model"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

// Monday morning. All bookings in these tests land later the same week.
var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)

type fixture struct {
	service      *Service
	appointments *fakeAppointmentRepo
	doctors      *fakeDoctorRepo
	patients     *fakePatientRepo
	reminders    *fakeReminderRepo
	doctor       *model.Doctor
	patient      *model.Patient
	specialtyID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	doctors := newFakeDoctorRepo()
	patients := newFakePatientRepo()
	appointments := newFakeAppointmentRepo()
	reminders := newFakeReminderRepo()

	specialtyID := uuid.New()
	doctor := &model.Doctor{
		Base:        model.Base{ID: uuid.New()},
		FirstName:   "Ana",
		LastName:    "Gomez",
		Active:      true,
		Specialties: []*model.Specialty{{ID: specialtyID, Name: "Cardiology"}},
		Availability: []*model.AvailabilityWindow{
			{Weekday: 1, StartTime: "09:00", EndTime: "17:00", SlotMinutes: 30},
			{Weekday: 1, StartTime: "22:00", EndTime: "23:59", SlotMinutes: 30},
		},
	}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	patient := &model.Patient{
		Base:      model.Base{ID: uuid.New()},
		FirstName: "Luis",
		LastName:  "Perez",
		Active:    true,
	}
	require.NoError(t, patients.Create(context.Background(), patient))

	service := NewService(appointments, doctors, patients, reminders,
		WithClock(func() time.Time { return testNow }))

	return &fixture{
		service:      service,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		reminders:    reminders,
		doctor:       doctor,
		patient:      patient,
		specialtyID:  specialtyID,
	}
}

func (f *fixture) bookRequest(start string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:   f.patient.ID,
		DoctorID:    f.doctor.ID,
		SpecialtyID: f.specialtyID,
		StartTime:   start,
	}
}

func intPtr(i int) *int { return &i }

func TestBook(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusReserved, appointment.Status)
	assert.Equal(t, 30, appointment.DurationMin)
	assert.NotEqual(t, uuid.Nil, appointment.ID)
}

func TestBookPastStart(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-03T09:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))
}

func TestBookMalformedStart(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookRequest("10/03/2025 09:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrMalformedInput))
}

func TestBookInactiveDoctor(t *testing.T) {
	f := newFixture(t)
	f.doctor.Active = false

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInactiveEntity))
}

func TestBookInactivePatient(t *testing.T) {
	f := newFixture(t)
	f.patient.Active = false

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInactiveEntity))
}

func TestBookSpecialtyMismatch(t *testing.T) {
	f := newFixture(t)

	req := f.bookRequest("2025-03-10T09:00")
	req.SpecialtyID = uuid.New()
	_, err := f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSpecialtyMismatch))
}

func TestBookDoctorWithoutSpecialties(t *testing.T) {
	f := newFixture(t)
	f.doctor.Specialties = nil

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSpecialtyMismatch))
}

func TestBookZeroDuration(t *testing.T) {
	f := newFixture(t)

	// An explicit zero must not fall back to the default duration.
	req := f.bookRequest("2025-03-10T09:00")
	req.DurationMin = intPtr(0)
	_, err := f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrMalformedInput))

	req.DurationMin = intPtr(-15)
	_, err = f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrMalformedInput))

	// Omitting the duration still books the default slot length.
	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T10:00"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultDurationMin, appointment.DurationMin)
}

func TestBookOutsideAvailability(t *testing.T) {
	f := newFixture(t)

	// Before the window opens.
	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T08:30"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrOutsideAvailability))

	// Wrong weekday.
	_, err = f.service.Book(context.Background(), f.bookRequest("2025-03-11T09:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrOutsideAvailability))

	// Fits the start but spills past the window end.
	req := f.bookRequest("2025-03-10T16:45")
	req.DurationMin = intPtr(30)
	_, err = f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrOutsideAvailability))
}

func TestBookCrossingMidnight(t *testing.T) {
	f := newFixture(t)

	req := f.bookRequest("2025-03-10T23:30")
	req.DurationMin = intPtr(60)
	_, err := f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrOutsideAvailability))
}

func TestBookBoundaryFitsWindowEnd(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T16:30"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10T17:00", appointment.EndTime().Format(model.TimestampLayout))
}

func TestBookDoctorConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	otherPatient := &model.Patient{Base: model.Base{ID: uuid.New()}, Active: true}
	require.NoError(t, f.patients.Create(context.Background(), otherPatient))

	req := f.bookRequest("2025-03-10T09:15")
	req.PatientID = otherPatient.ID
	_, err = f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSchedulingConflict))
}

func TestBookPatientConflictAcrossDoctors(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	otherDoctor := &model.Doctor{
		Base:        model.Base{ID: uuid.New()},
		Active:      true,
		Specialties: []*model.Specialty{{ID: f.specialtyID}},
		Availability: []*model.AvailabilityWindow{
			{Weekday: 1, StartTime: "09:00", EndTime: "17:00", SlotMinutes: 30},
		},
	}
	require.NoError(t, f.doctors.Create(context.Background(), otherDoctor))

	req := f.bookRequest("2025-03-10T09:15")
	req.DoctorID = otherDoctor.ID
	_, err = f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSchedulingConflict))
}

func TestBookAdjacentSlots(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	// Half-open intervals: back-to-back is not a conflict.
	_, err = f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:30"))
	assert.NoError(t, err)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	newStart := "2025-03-10T10:00"
	updated, err := f.service.Reschedule(context.Background(), appointment.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusRescheduled, updated.Status)
	assert.Equal(t, "2025-03-10T10:00", updated.StartTime.Format(model.TimestampLayout))
}

func TestRescheduleSameSlotKeepsStatus(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	// The appointment's own interval is excluded from the overlap scan, so
	// an unchanged start revalidates cleanly.
	sameStart := "2025-03-10T09:00"
	updated, err := f.service.Reschedule(context.Background(), appointment.ID, &model.UpdateAppointmentRequest{
		StartTime: &sameStart,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusReserved, updated.Status)
}

func TestRescheduleConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	second, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T10:00"))
	require.NoError(t, err)

	clash := "2025-03-10T09:15"
	_, err = f.service.Reschedule(context.Background(), second.ID, &model.UpdateAppointmentRequest{
		StartTime: &clash,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSchedulingConflict))
}

func TestRescheduleCancelsLateReminders(t *testing.T) {
	f := newFixture(t)

	// Open Wednesday and Friday so the move below stays inside availability.
	f.doctor.Availability = append(f.doctor.Availability,
		&model.AvailabilityWindow{Weekday: 3, StartTime: "09:00", EndTime: "17:00", SlotMinutes: 30},
		&model.AvailabilityWindow{Weekday: 5, StartTime: "09:00", EndTime: "17:00", SlotMinutes: 30})

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-14T09:00"))
	require.NoError(t, err)

	early := &model.Reminder{
		AppointmentID: appointment.ID,
		Channel:       model.ReminderChannelEmail,
		ScheduledFor:  time.Date(2025, 3, 11, 9, 0, 0, 0, time.Local),
		Status:        model.ReminderStatusPending,
	}
	late := &model.Reminder{
		AppointmentID: appointment.ID,
		Channel:       model.ReminderChannelSMS,
		ScheduledFor:  time.Date(2025, 3, 13, 8, 0, 0, 0, time.Local),
		Status:        model.ReminderStatusPending,
	}
	require.NoError(t, f.reminders.Create(context.Background(), early))
	require.NoError(t, f.reminders.Create(context.Background(), late))

	// Move the Friday 09:00 appointment up to Wednesday 09:00: the late
	// reminder now violates the 24h lead and must be cancelled.
	newStart := "2025-03-12T09:00"
	_, err = f.service.Reschedule(context.Background(), appointment.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ReminderStatusPending, f.reminders.reminders[early.ID].Status)
	assert.Equal(t, model.ReminderStatusCancelled, f.reminders.reminders[late.ID].Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(context.Background(), appointment.ID))

	stored, err := f.appointments.Get(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, stored.Status)

	// A second cancel hits the terminal-state guard.
	err = f.service.Cancel(context.Background(), appointment.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))
}

func TestCancelPastAppointment(t *testing.T) {
	f := newFixture(t)

	past := &model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   f.patient.ID,
		DoctorID:    f.doctor.ID,
		SpecialtyID: f.specialtyID,
		StartTime:   testNow.Add(-2 * time.Hour),
		DurationMin: 30,
		Status:      model.AppointmentStatusReserved,
	}
	require.NoError(t, f.appointments.Create(context.Background(), past))

	err := f.service.Cancel(context.Background(), past.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))
}

func TestAttend(t *testing.T) {
	f := newFixture(t)

	past := &model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   f.patient.ID,
		DoctorID:    f.doctor.ID,
		SpecialtyID: f.specialtyID,
		StartTime:   testNow.Add(-2 * time.Hour),
		DurationMin: 30,
		Status:      model.AppointmentStatusReserved,
	}
	require.NoError(t, f.appointments.Create(context.Background(), past))

	url := "https://files.example.com/rx/123.pdf"
	require.NoError(t, f.service.Attend(context.Background(), past.ID, &url))

	stored, err := f.appointments.Get(context.Background(), past.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusAttended, stored.Status)
	require.NotNil(t, stored.PrescriptionURL)
	assert.Equal(t, url, *stored.PrescriptionURL)
}

func TestAttendFutureAppointment(t *testing.T) {
	f := newFixture(t)

	appointment, err := f.service.Book(context.Background(), f.bookRequest("2025-03-10T09:00"))
	require.NoError(t, err)

	err = f.service.Attend(context.Background(), appointment.ID, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))
}

func TestBookUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	req := f.bookRequest("2025-03-10T09:00")
	req.DoctorID = uuid.New()
	_, err := f.service.Book(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
