package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		// Get returns the doctor with specialties and availability windows
		// loaded.
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
		ListSpecialties(ctx context.Context) ([]*model.Specialty, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListForDoctorDay returns the doctor's non-cancelled appointments
		// whose start falls on the given calendar date, ordered by start.
		ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error)
		// HasOverlap reports whether any non-cancelled appointment of the
		// doctor or the patient overlaps [start, start+duration), skipping
		// excludeID when set.
		HasOverlap(ctx context.Context, doctorID, patientID uuid.UUID, start time.Time, durationMin int, excludeID *uuid.UUID) (bool, error)
		// WithScheduleLock runs fn inside one transaction holding advisory
		// locks on the doctor's and the patient's schedules. Repository
		// calls made with the context passed to fn join that transaction.
		WithScheduleLock(ctx context.Context, doctorID, patientID uuid.UUID, fn func(ctx context.Context) error) error
	}

	ConsultationRepository interface {
		// Create persists the consultation, its optional prescription with
		// ordered items, and flips the appointment to attended, all in one
		// transaction. It fails with InvalidTemporalState when the
		// appointment already has a consultation; the check runs under the
		// appointment's row lock so concurrent calls cannot both insert.
		Create(ctx context.Context, consultation *model.Consultation) error
		// GetByAppointment returns (nil, nil) when no consultation exists.
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Consultation, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error)
	}

	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.Reminder) error
		ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Reminder, error)
		// DuePending returns PENDING reminders scheduled at or before now,
		// locking the rows. The locks last only as long as the enclosing
		// WithTx scope, so callers that go on to mark the batch must run
		// the whole cycle inside one.
		DuePending(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
		MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
		// CancelLateForAppointment cancels pending reminders scheduled
		// after the cutoff, returning how many were affected.
		CancelLateForAppointment(ctx context.Context, appointmentID uuid.UUID, cutoff time.Time) (int64, error)
		// WithTx runs fn inside one transaction; repository calls made
		// with the context passed to fn join it.
		WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	ReportRepository interface {
		Summary(ctx context.Context, now time.Time) (*model.Summary, error)
		AppointmentsPerDoctor(ctx context.Context, from, to *time.Time) ([]*model.DoctorAppointmentCount, error)
		AppointmentsPerSpecialty(ctx context.Context) ([]*model.SpecialtyAppointmentCount, error)
		AttendedPatients(ctx context.Context, from, to time.Time, doctorID, specialtyID *uuid.UUID) ([]*model.AttendedPatientRow, error)
		Attendance(ctx context.Context, from, to, now time.Time) (*model.AttendanceReport, error)
	}
)
