package consultation

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

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appointment, nil
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error { return nil }
func (r *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) ListForDoctorDay(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentRepo) HasOverlap(_ context.Context, _, _ uuid.UUID, _ time.Time, _ int, _ *uuid.UUID) (bool, error) {
	return false, nil
}
func (r *fakeAppointmentRepo) WithScheduleLock(ctx context.Context, _, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeConsultationRepo mirrors the transactional contract: creating the
// consultation also flips the appointment to attended, and a duplicate
// insert for the same appointment fails inside the transaction.
// staleReads makes GetByAppointment report nothing, the way a reader that
// has not yet observed another transaction's commit would.
type fakeConsultationRepo struct {
	byAppointment map[uuid.UUID]*model.Consultation
	appointments  *fakeAppointmentRepo
	staleReads    bool
}

func (r *fakeConsultationRepo) Create(_ context.Context, consultation *model.Consultation) error {
	if _, ok := r.byAppointment[consultation.AppointmentID]; ok {
		return apperrors.InvalidTemporalState("the appointment already has a consultation recorded")
	}
	consultation.ID = uuid.New()
	r.byAppointment[consultation.AppointmentID] = consultation
	if a, ok := r.appointments.appointments[consultation.AppointmentID]; ok {
		a.Status = model.AppointmentStatusAttended
	}
	return nil
}

func (r *fakeConsultationRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Consultation, error) {
	if r.staleReads {
		return nil, nil
	}
	return r.byAppointment[appointmentID], nil
}

func (r *fakeConsultationRepo) ListByPatient(_ context.Context, _ uuid.UUID) ([]*model.Consultation, error) {
	return nil, nil
}

func newTestService(appointments ...*model.Appointment) (*Service, *fakeAppointmentRepo, *fakeConsultationRepo) {
	appointmentRepo := &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	for _, a := range appointments {
		appointmentRepo.appointments[a.ID] = a
	}
	consultationRepo := &fakeConsultationRepo{
		byAppointment: make(map[uuid.UUID]*model.Consultation),
		appointments:  appointmentRepo,
	}
	service := NewService(consultationRepo, appointmentRepo,
		WithClock(func() time.Time { return testNow }))
	return service, appointmentRepo, consultationRepo
}

func pastAppointment(status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		StartTime:   testNow.Add(-2 * time.Hour),
		DurationMin: 30,
		Status:      status,
	}
}

func strPtr(s string) *string { return &s }

func TestRecord(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusReserved)
	service, appointmentRepo, _ := newTestService(appointment)

	consultation, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Motive:    strPtr("checkup"),
		Diagnosis: strPtr("all clear"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, consultation.ID)
	assert.Equal(t, appointment.ID, consultation.AppointmentID)
	assert.Equal(t, model.AppointmentStatusAttended, appointmentRepo.appointments[appointment.ID].Status)
}

func TestRecordWithPrescription(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusReserved)
	service, _, _ := newTestService(appointment)

	consultation, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Prescription: &model.PrescriptionInput{
			IssueDate: "2025-03-10",
			Items: []model.PrescriptionItemInput{
				{Drug: "ibuprofen", Dose: strPtr("400mg")},
				{Drug: "amoxicillin"},
			},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, consultation.Prescription)
	assert.Equal(t, model.PrescriptionStatusActive, consultation.Prescription.Status)
	require.Len(t, consultation.Prescription.Items, 2)
	assert.Equal(t, "ibuprofen", consultation.Prescription.Items[0].Drug)
}

func TestRecordAtMostOnce(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusReserved)
	service, _, consultationRepo := newTestService(appointment)

	first, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Motive: strPtr("first visit"),
	})
	require.NoError(t, err)

	_, err = service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Motive: strPtr("second attempt"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))

	// The original record is untouched.
	stored := consultationRepo.byAppointment[appointment.ID]
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "first visit", *stored.Motive)
}

func TestRecordDuplicateBehindStaleRead(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusReserved)
	service, _, consultationRepo := newTestService(appointment)

	first, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Motive: strPtr("first visit"),
	})
	require.NoError(t, err)

	// A caller whose pre-check did not see the first record still fails on
	// the insert itself.
	consultationRepo.staleReads = true
	_, err = service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Motive: strPtr("second attempt"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))

	stored := consultationRepo.byAppointment[appointment.ID]
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "first visit", *stored.Motive)
}

func TestRecordCancelledAppointment(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusCancelled)
	service, _, _ := newTestService(appointment)

	_, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))
}

func TestRecordFutureAppointment(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusReserved)
	appointment.StartTime = testNow.Add(2 * time.Hour)
	service, _, _ := newTestService(appointment)

	_, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTemporalState))
}

func TestRecordInvalidIssueDate(t *testing.T) {
	appointment := pastAppointment(model.AppointmentStatusReserved)
	service, _, _ := newTestService(appointment)

	_, err := service.Record(context.Background(), appointment.ID, &model.RecordConsultationRequest{
		Prescription: &model.PrescriptionInput{IssueDate: "10/03/2025"},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrMalformedInput))
}

func TestRecordUnknownAppointment(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Record(context.Background(), uuid.New(), &model.RecordConsultationRequest{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
