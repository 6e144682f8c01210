package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

// Doctor profiles (specialties + availability windows) change rarely but are
// read on every booking attempt; a short TTL bounds staleness.
const doctorCacheTTL = 30 * time.Second

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	reminders    repository.ReminderRepository
	doctorCache  *cache.Cache
	now          func() time.Time
}

type Option func(*Service)

// WithClock overrides the wall clock, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.now = clock }
}

func NewService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	reminders repository.ReminderRepository,
	opts ...Option,
) *Service {
	s := &Service{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		reminders:    reminders,
		doctorCache:  cache.New(doctorCacheTTL, 2*doctorCacheTTL),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book validates and reserves an appointment. Validation and insert run
// inside one transaction holding the doctor's and the patient's schedule
// locks, so two concurrent requests for overlapping slots cannot both
// succeed.
func (s *Service) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	start, err := time.ParseInLocation(model.TimestampLayout, req.StartTime, time.Local)
	if err != nil {
		return nil, apperrors.MalformedInput("invalid date format, use YYYY-MM-DDTHH:MM", err)
	}

	duration := model.DefaultDurationMin
	if req.DurationMin != nil {
		duration = *req.DurationMin
	}

	now := s.now()
	appointment := &model.Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		SpecialtyID: req.SpecialtyID,
		StartTime:   start,
		DurationMin: duration,
		Status:      model.AppointmentStatusReserved,
	}

	err = s.appointments.WithScheduleLock(ctx, req.DoctorID, req.PatientID, func(ctx context.Context) error {
		if err := s.validateSlot(ctx, req.DoctorID, req.PatientID, req.SpecialtyID, start, duration, now, nil); err != nil {
			return err
		}
		return s.appointments.Create(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// Reschedule merges the supplied fields over the stored appointment and
// re-runs the full booking validation, excluding the appointment's own
// interval from the overlap scan. Pending reminders that no longer satisfy
// the lead time against the new start are cancelled in the same transaction.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := appointment.StartTime
	if req.StartTime != nil {
		start, err = time.ParseInLocation(model.TimestampLayout, *req.StartTime, time.Local)
		if err != nil {
			return nil, apperrors.MalformedInput("invalid date format, use YYYY-MM-DDTHH:MM", err)
		}
	}

	doctorID := appointment.DoctorID
	if req.DoctorID != nil {
		doctorID = *req.DoctorID
	}
	patientID := appointment.PatientID
	if req.PatientID != nil {
		patientID = *req.PatientID
	}
	specialtyID := appointment.SpecialtyID
	if req.SpecialtyID != nil {
		specialtyID = *req.SpecialtyID
	}
	duration := appointment.DurationMin
	if req.DurationMin != nil {
		duration = *req.DurationMin
	}

	now := s.now()
	err = s.appointments.WithScheduleLock(ctx, doctorID, patientID, func(ctx context.Context) error {
		if err := s.validateSlot(ctx, doctorID, patientID, specialtyID, start, duration, now, &id); err != nil {
			return err
		}

		moved := !start.Equal(appointment.StartTime)
		appointment.DoctorID = doctorID
		appointment.PatientID = patientID
		appointment.SpecialtyID = specialtyID
		appointment.StartTime = start
		appointment.DurationMin = duration
		if moved && appointment.Status == model.AppointmentStatusReserved {
			appointment.Status = model.AppointmentStatusRescheduled
		}

		if err := s.appointments.Update(ctx, appointment); err != nil {
			return err
		}

		_, err := s.reminders.CancelLateForAppointment(ctx, id, start.Add(-model.MinReminderLead))
		return err
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// Cancel marks a reserved appointment cancelled. Past or already closed
// appointments cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if appointment.Status.Terminal() {
		return apperrors.InvalidTemporalState("the appointment can no longer be cancelled")
	}
	if !appointment.StartTime.After(now) {
		return apperrors.InvalidTemporalState("only future appointments can be cancelled")
	}

	appointment.Status = model.AppointmentStatusCancelled
	return s.appointments.Update(ctx, appointment)
}

// Attend closes out an appointment whose time has passed, optionally
// recording the prescription document URL.
func (s *Service) Attend(ctx context.Context, id uuid.UUID, prescriptionURL *string) error {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if appointment.Status.Terminal() {
		return apperrors.InvalidTemporalState("the appointment can no longer be marked attended")
	}
	if appointment.StartTime.After(now) {
		return apperrors.InvalidTemporalState("only appointments whose time has passed can be closed out")
	}

	appointment.Status = model.AppointmentStatusAttended
	if prescriptionURL != nil && *prescriptionURL != "" {
		appointment.PrescriptionURL = prescriptionURL
	}
	return s.appointments.Update(ctx, appointment)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

// validateSlot runs the booking checks in order, failing fast on the first
// violation. now is captured once per operation by the caller so a request
// cannot flip eligibility between its own checks. excludeID skips the
// appointment's prior interval during reschedules.
func (s *Service) validateSlot(ctx context.Context, doctorID, patientID, specialtyID uuid.UUID, start time.Time, durationMin int, now time.Time, excludeID *uuid.UUID) error {
	if !start.After(now) {
		return apperrors.InvalidTemporalState("the appointment start must be in the future")
	}
	if durationMin <= 0 {
		return apperrors.MalformedInput("the duration must be greater than zero", nil)
	}

	doctor, err := s.getDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if !doctor.Active {
		return apperrors.InactiveEntity("the doctor is not active")
	}
	if len(doctor.Specialties) == 0 {
		return apperrors.SpecialtyMismatch("the doctor has no specialties assigned")
	}
	if !doctor.HasSpecialty(specialtyID) {
		return apperrors.SpecialtyMismatch("the selected specialty does not belong to the doctor")
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return err
	}
	if !patient.Active {
		return apperrors.InactiveEntity("the patient is not active")
	}

	windows := doctor.WindowsOn(start.Weekday())
	if len(windows) == 0 {
		return apperrors.OutsideAvailability("the doctor has no availability configured for that day")
	}
	fits, err := fitsAvailability(windows, start, durationMin)
	if err != nil {
		return err
	}
	if !fits {
		return apperrors.OutsideAvailability("the requested time is outside the doctor's availability")
	}

	overlap, err := s.appointments.HasOverlap(ctx, doctorID, patientID, start, durationMin, excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return apperrors.SchedulingConflict("the slot overlaps another appointment for the doctor or the patient")
	}
	return nil
}

func (s *Service) getDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if cached, ok := s.doctorCache.Get(id.String()); ok {
		return cached.(*model.Doctor), nil
	}
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.doctorCache.Set(id.String(), doctor, cache.DefaultExpiration)
	return doctor, nil
}
