package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type consultationRepository struct {
	BaseRepository
}

func NewConsultationRepository(db *sqlx.DB) repository.ConsultationRepository {
	return &consultationRepository{BaseRepository: NewBaseRepository(db)}
}

// Create commits the consultation, its optional prescription with ordered
// items, and the appointment's attended flip as one group. Partial writes
// are never observable.
func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		// The appointment row lock serializes concurrent attempts, so the
		// existence check below cannot race another insert.
		var locked uuid.UUID
		err := sqlx.GetContext(ctx, r.q(ctx), &locked,
			`SELECT id FROM appointments WHERE id = $1 FOR UPDATE`,
			consultation.AppointmentID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("appointment", nil)
		}
		if err != nil {
			return fmt.Errorf("failed to lock appointment: %w", err)
		}

		var exists bool
		if err := sqlx.GetContext(ctx, r.q(ctx), &exists,
			`SELECT EXISTS (SELECT 1 FROM consultations WHERE appointment_id = $1)`,
			consultation.AppointmentID); err != nil {
			return fmt.Errorf("failed to check for existing consultation: %w", err)
		}
		if exists {
			return apperrors.InvalidTemporalState("the appointment already has a consultation recorded")
		}

		if consultation.ID == uuid.Nil {
			consultation.ID = uuid.New()
		}
		if consultation.CreatedAt.IsZero() {
			consultation.CreatedAt = time.Now()
		}

		query := `
			INSERT INTO consultations (
				id, appointment_id, motive, observations, diagnosis,
				indications, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = r.q(ctx).ExecContext(ctx, query,
			consultation.ID,
			consultation.AppointmentID,
			consultation.Motive,
			consultation.Observations,
			consultation.Diagnosis,
			consultation.Indications,
			consultation.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create consultation: %w", err)
		}

		if consultation.Prescription != nil {
			if err := r.createPrescription(ctx, consultation.ID, consultation.Prescription); err != nil {
				return err
			}
		}

		_, err = r.q(ctx).ExecContext(ctx,
			`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3 AND status != $1`,
			model.AppointmentStatusAttended, time.Now(), consultation.AppointmentID)
		if err != nil {
			return fmt.Errorf("failed to mark appointment attended: %w", err)
		}
		return nil
	})
}

func (r *consultationRepository) createPrescription(ctx context.Context, consultationID uuid.UUID, prescription *model.Prescription) error {
	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	prescription.ConsultationID = consultationID
	if prescription.Status == "" {
		prescription.Status = model.PrescriptionStatusActive
	}

	query := `
		INSERT INTO prescriptions (
			id, consultation_id, issue_date, status, digital_signature
		) VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q(ctx).ExecContext(ctx, query,
		prescription.ID,
		prescription.ConsultationID,
		prescription.IssueDate,
		prescription.Status,
		prescription.DigitalSignature,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}

	for i, item := range prescription.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.PrescriptionID = prescription.ID
		item.Position = i
		_, err := r.q(ctx).ExecContext(ctx,
			`INSERT INTO prescription_items (
				id, prescription_id, position, drug, dose, frequency, duration, instructions
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, item.PrescriptionID, item.Position, item.Drug,
			item.Dose, item.Frequency, item.Duration, item.Instructions)
		if err != nil {
			return fmt.Errorf("failed to create prescription item: %w", err)
		}
	}
	return nil
}

func (r *consultationRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Consultation, error) {
	query := `
		SELECT id, appointment_id, motive, observations, diagnosis,
			   indications, created_at
		FROM consultations
		WHERE appointment_id = $1
	`
	var consultation model.Consultation
	err := sqlx.GetContext(ctx, r.q(ctx), &consultation, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}

	if consultation.Prescription, err = r.prescriptionOf(ctx, consultation.ID); err != nil {
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Consultation, error) {
	query := `
		SELECT c.id, c.appointment_id, c.motive, c.observations, c.diagnosis,
			   c.indications, c.created_at
		FROM consultations c
		JOIN appointments a ON a.id = c.appointment_id
		WHERE a.patient_id = $1
		ORDER BY c.created_at DESC
	`
	var consultations []*model.Consultation
	if err := sqlx.SelectContext(ctx, r.q(ctx), &consultations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient consultations: %w", err)
	}

	for _, consultation := range consultations {
		var err error
		if consultation.Prescription, err = r.prescriptionOf(ctx, consultation.ID); err != nil {
			return nil, err
		}
	}
	return consultations, nil
}

func (r *consultationRepository) prescriptionOf(ctx context.Context, consultationID uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, consultation_id, issue_date, status, digital_signature
		FROM prescriptions
		WHERE consultation_id = $1
	`
	var prescription model.Prescription
	err := sqlx.GetContext(ctx, r.q(ctx), &prescription, query, consultationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	itemsQuery := `
		SELECT id, prescription_id, position, drug, dose, frequency, duration, instructions
		FROM prescription_items
		WHERE prescription_id = $1
		ORDER BY position
	`
	if err := sqlx.SelectContext(ctx, r.q(ctx), &prescription.Items, itemsQuery, prescription.ID); err != nil {
		return nil, fmt.Errorf("failed to list prescription items: %w", err)
	}
	return &prescription, nil
}
