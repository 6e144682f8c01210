package consultation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type Service struct {
	consultations repository.ConsultationRepository
	appointments  repository.AppointmentRepository
	now           func() time.Time
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.now = clock }
}

func NewService(consultations repository.ConsultationRepository, appointments repository.AppointmentRepository, opts ...Option) *Service {
	s := &Service{
		consultations: consultations,
		appointments:  appointments,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record attaches the clinical record to an appointment. The consultation,
// its optional prescription with ordered items, and the attended flip commit
// as one transaction; a second call for the same appointment fails and
// leaves the first record untouched.
func (s *Service) Record(ctx context.Context, appointmentID uuid.UUID, req *model.RecordConsultationRequest) (*model.Consultation, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.InvalidTemporalState("the appointment is cancelled")
	}
	if appointment.StartTime.After(s.now()) {
		return nil, apperrors.InvalidTemporalState("only past appointments can have a consultation recorded")
	}

	existing, err := s.consultations.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.InvalidTemporalState("the appointment already has a consultation recorded")
	}

	consultation := &model.Consultation{
		AppointmentID: appointmentID,
		Motive:        req.Motive,
		Observations:  req.Observations,
		Diagnosis:     req.Diagnosis,
		Indications:   req.Indications,
	}

	if req.Prescription != nil {
		prescription, err := buildPrescription(req.Prescription)
		if err != nil {
			return nil, err
		}
		consultation.Prescription = prescription
	}

	if err := s.consultations.Create(ctx, consultation); err != nil {
		return nil, err
	}
	return consultation, nil
}

// ByAppointment returns the appointment's consultation, or nil when none
// has been recorded.
func (s *Service) ByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Consultation, error) {
	return s.consultations.GetByAppointment(ctx, appointmentID)
}

// PatientHistory lists a patient's consultations, most recent first.
func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	return s.consultations.ListByPatient(ctx, patientID)
}

func buildPrescription(input *model.PrescriptionInput) (*model.Prescription, error) {
	issueDate, err := time.ParseInLocation(model.DateLayout, input.IssueDate, time.Local)
	if err != nil {
		return nil, apperrors.MalformedInput("invalid issue date, use YYYY-MM-DD", err)
	}

	status := input.Status
	if status == "" {
		status = model.PrescriptionStatusActive
	}

	prescription := &model.Prescription{
		IssueDate:        issueDate,
		Status:           status,
		DigitalSignature: input.DigitalSignature,
	}
	for _, item := range input.Items {
		prescription.Items = append(prescription.Items, &model.PrescriptionItem{
			Drug:         item.Drug,
			Dose:         item.Dose,
			Frequency:    item.Frequency,
			Duration:     item.Duration,
			Instructions: item.Instructions,
		})
	}
	return prescription, nil
}
