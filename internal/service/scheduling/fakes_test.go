package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *fakeDoctorRepo) Create(_ context.Context, doctor *model.Doctor) error {
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return doctor, nil
}

func (r *fakeDoctorRepo) Update(_ context.Context, doctor *model.Doctor) error {
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	doctor, ok := r.doctors[id]
	if !ok {
		return apperrors.NotFound("doctor", nil)
	}
	doctor.Active = false
	return nil
}

func (r *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) ListSpecialties(_ context.Context) ([]*model.Specialty, error) {
	return nil, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, patient *model.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}

func (r *fakePatientRepo) Update(_ context.Context, patient *model.Patient) error {
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	patient, ok := r.patients[id]
	if !ok {
		return apperrors.NotFound("patient", nil)
	}
	patient.Active = false
	return nil
}

func (r *fakePatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	copied := *appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appointment *model.Appointment) error {
	if _, ok := r.appointments[appointment.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	copied := *appointment
	r.appointments[appointment.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListForDoctorDay(_ context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.DoctorID != doctorID || a.Status == model.AppointmentStatusCancelled {
			continue
		}
		y1, m1, d1 := a.StartTime.Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) HasOverlap(_ context.Context, doctorID, patientID uuid.UUID, start time.Time, durationMin int, excludeID *uuid.UUID) (bool, error) {
	end := start.Add(time.Duration(durationMin) * time.Minute)
	for _, a := range r.appointments {
		if a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorID != doctorID && a.PatientID != patientID {
			continue
		}
		if a.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) WithScheduleLock(ctx context.Context, _, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeReminderRepo struct {
	reminders map[uuid.UUID]*model.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[uuid.UUID]*model.Reminder)}
}

func (r *fakeReminderRepo) Create(_ context.Context, reminder *model.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	r.reminders[reminder.ID] = reminder
	return nil
}

func (r *fakeReminderRepo) ListForAppointment(_ context.Context, appointmentID uuid.UUID) ([]*model.Reminder, error) {
	var out []*model.Reminder
	for _, rem := range r.reminders {
		if rem.AppointmentID == appointmentID {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) DuePending(_ context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	var out []*model.Reminder
	for _, rem := range r.reminders {
		if rem.Status == model.ReminderStatusPending && !rem.ScheduledFor.After(now) {
			out = append(out, rem)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	rem := r.reminders[id]
	rem.Status = model.ReminderStatusSent
	rem.SentAt = &at
	return nil
}

func (r *fakeReminderRepo) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	rem := r.reminders[id]
	rem.Status = model.ReminderStatusFailed
	rem.ErrorMessage = &errorMessage
	return nil
}

func (r *fakeReminderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *fakeReminderRepo) CancelLateForAppointment(_ context.Context, appointmentID uuid.UUID, cutoff time.Time) (int64, error) {
	var affected int64
	for _, rem := range r.reminders {
		if rem.AppointmentID == appointmentID &&
			rem.Status == model.ReminderStatusPending &&
			rem.ScheduledFor.After(cutoff) {
			rem.Status = model.ReminderStatusCancelled
			affected++
		}
	}
	return affected, nil
}
