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

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		if err := r.ensureUnique(ctx, doctor.DocumentID, doctor.Email, doctor.LicenseNumber, nil); err != nil {
			return err
		}

		if doctor.ID == uuid.Nil {
			doctor.ID = uuid.New()
		}
		now := time.Now()
		doctor.CreatedAt = now
		doctor.UpdatedAt = now

		query := `
			INSERT INTO doctors (
				id, first_name, last_name, document_id, license_number,
				email, phone, active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := r.q(ctx).ExecContext(ctx, query,
			doctor.ID,
			doctor.FirstName,
			doctor.LastName,
			doctor.DocumentID,
			doctor.LicenseNumber,
			doctor.Email,
			doctor.Phone,
			doctor.Active,
			doctor.CreatedAt,
			doctor.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create doctor: %w", err)
		}

		if err := r.replaceSpecialties(ctx, doctor.ID, doctor.Specialties); err != nil {
			return err
		}
		return r.replaceAvailability(ctx, doctor.ID, doctor.Availability)
	})
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, first_name, last_name, document_id, license_number,
			   email, phone, active, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := sqlx.GetContext(ctx, r.q(ctx), &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if doctor.Specialties, err = r.specialtiesOf(ctx, id); err != nil {
		return nil, err
	}
	if doctor.Availability, err = r.availabilityOf(ctx, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		if err := r.ensureUnique(ctx, doctor.DocumentID, doctor.Email, doctor.LicenseNumber, &doctor.ID); err != nil {
			return err
		}

		doctor.UpdatedAt = time.Now()
		query := `
			UPDATE doctors
			SET first_name = $1, last_name = $2, license_number = $3,
				email = $4, phone = $5, active = $6, updated_at = $7
			WHERE id = $8
		`
		result, err := r.q(ctx).ExecContext(ctx, query,
			doctor.FirstName,
			doctor.LastName,
			doctor.LicenseNumber,
			doctor.Email,
			doctor.Phone,
			doctor.Active,
			doctor.UpdatedAt,
			doctor.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update doctor: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("doctor", nil)
		}

		if err := r.replaceSpecialties(ctx, doctor.ID, doctor.Specialties); err != nil {
			return err
		}
		return r.replaceAvailability(ctx, doctor.ID, doctor.Availability)
	})
}

func (r *doctorRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx,
		`UPDATE doctors SET active = false, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate doctor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT id, first_name, last_name, document_id, license_number,
			   email, phone, active, created_at, updated_at
		FROM doctors
		ORDER BY last_name, first_name
	`
	var doctors []*model.Doctor
	if err := sqlx.SelectContext(ctx, r.q(ctx), &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	for _, doctor := range doctors {
		var err error
		if doctor.Specialties, err = r.specialtiesOf(ctx, doctor.ID); err != nil {
			return nil, err
		}
		if doctor.Availability, err = r.availabilityOf(ctx, doctor.ID); err != nil {
			return nil, err
		}
	}
	return doctors, nil
}

func (r *doctorRepository) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	var specialties []*model.Specialty
	err := sqlx.SelectContext(ctx, r.q(ctx), &specialties,
		`SELECT id, name FROM specialties ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *doctorRepository) specialtiesOf(ctx context.Context, doctorID uuid.UUID) ([]*model.Specialty, error) {
	query := `
		SELECT s.id, s.name
		FROM specialties s
		JOIN doctor_specialties ds ON ds.specialty_id = s.id
		WHERE ds.doctor_id = $1
		ORDER BY s.name
	`
	var specialties []*model.Specialty
	if err := sqlx.SelectContext(ctx, r.q(ctx), &specialties, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to load doctor specialties: %w", err)
	}
	return specialties, nil
}

func (r *doctorRepository) availabilityOf(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, slot_minutes
		FROM availability_windows
		WHERE doctor_id = $1
		ORDER BY weekday, start_time
	`
	var windows []*model.AvailabilityWindow
	if err := sqlx.SelectContext(ctx, r.q(ctx), &windows, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to load availability windows: %w", err)
	}
	return windows, nil
}

func (r *doctorRepository) replaceSpecialties(ctx context.Context, doctorID uuid.UUID, specialties []*model.Specialty) error {
	if _, err := r.q(ctx).ExecContext(ctx,
		`DELETE FROM doctor_specialties WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("failed to clear doctor specialties: %w", err)
	}
	for _, s := range specialties {
		if _, err := r.q(ctx).ExecContext(ctx,
			`INSERT INTO doctor_specialties (doctor_id, specialty_id) VALUES ($1, $2)`,
			doctorID, s.ID); err != nil {
			return fmt.Errorf("failed to assign specialty: %w", err)
		}
	}
	return nil
}

func (r *doctorRepository) replaceAvailability(ctx context.Context, doctorID uuid.UUID, windows []*model.AvailabilityWindow) error {
	if _, err := r.q(ctx).ExecContext(ctx,
		`DELETE FROM availability_windows WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("failed to clear availability windows: %w", err)
	}
	for _, w := range windows {
		if w.ID == uuid.Nil {
			w.ID = uuid.New()
		}
		w.DoctorID = doctorID
		if _, err := r.q(ctx).ExecContext(ctx,
			`INSERT INTO availability_windows (id, doctor_id, weekday, start_time, end_time, slot_minutes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			w.ID, w.DoctorID, w.Weekday, w.StartTime, w.EndTime, w.SlotMinutes); err != nil {
			return fmt.Errorf("failed to insert availability window: %w", err)
		}
	}
	return nil
}

func (r *doctorRepository) ensureUnique(ctx context.Context, documentID string, email *string, license string, excludeID *uuid.UUID) error {
	checks := []struct {
		column  string
		value   interface{}
		message string
	}{
		{"document_id", documentID, "a doctor with that document id already exists"},
		{"license_number", license, "a doctor with that license number already exists"},
	}
	if email != nil && *email != "" {
		checks = append(checks, struct {
			column  string
			value   interface{}
			message string
		}{"email", *email, "a doctor with that email already exists"})
	}

	for _, check := range checks {
		query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM doctors WHERE %s = $1`, check.column)
		args := []interface{}{check.value}
		if excludeID != nil {
			query += " AND id != $2"
			args = append(args, *excludeID)
		}
		query += ")"

		var exists bool
		if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, args...); err != nil {
			return fmt.Errorf("failed to check doctor uniqueness: %w", err)
		}
		if exists {
			return apperrors.MalformedInput(check.message, nil)
		}
	}
	return nil
}
