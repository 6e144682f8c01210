package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, specialty_id,
			start_time, duration_min, status, prescription_url,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.q(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.SpecialtyID,
		appointment.StartTime,
		appointment.DurationMin,
		appointment.Status,
		appointment.PrescriptionURL,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, specialty_id,
			   start_time, duration_min, status, prescription_url,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := sqlx.GetContext(ctx, r.q(ctx), &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, specialty_id = $3,
			start_time = $4, duration_min = $5, status = $6,
			prescription_url = $7, updated_at = $8
		WHERE id = $9
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.q(ctx).ExecContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.SpecialtyID,
		appointment.StartTime,
		appointment.DurationMin,
		appointment.Status,
		appointment.PrescriptionURL,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, specialty_id,
			   start_time, duration_min, status, prescription_url,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	var args []interface{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.From.IsZero() {
			query += fmt.Sprintf(" AND start_time >= $%d", argCount)
			args = append(args, filters.From)
			argCount++
		}
		if !filters.To.IsZero() {
			query += fmt.Sprintf(" AND start_time <= $%d", argCount)
			args = append(args, filters.To)
			argCount++
		}
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := sqlx.SelectContext(ctx, r.q(ctx), &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	query := `
		SELECT id, patient_id, doctor_id, specialty_id,
			   start_time, duration_min, status, prescription_url,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND start_time >= $2
		AND start_time < $3
		AND status != 'cancelled'
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := sqlx.SelectContext(ctx, r.q(ctx), &appointments, query, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) HasOverlap(ctx context.Context, doctorID, patientID uuid.UUID, start time.Time, durationMin int, excludeID *uuid.UUID) (bool, error) {
	end := start.Add(time.Duration(durationMin) * time.Minute)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE status != 'cancelled'
			AND (doctor_id = $1 OR patient_id = $2)
			AND start_time < $3
			AND $4 < start_time + (duration_min * interval '1 minute')
	`
	args := []interface{}{doctorID, patientID, end, start}

	if excludeID != nil {
		query += " AND id != $5"
		args = append(args, *excludeID)
	}

	query += ")"

	var hasOverlap bool
	err := sqlx.GetContext(ctx, r.q(ctx), &hasOverlap, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return hasOverlap, nil
}

// WithScheduleLock serializes concurrent bookings touching the same doctor
// or patient. Lock keys are taken in sorted order so two requests locking
// the same pair cannot deadlock.
func (r *appointmentRepository) WithScheduleLock(ctx context.Context, doctorID, patientID uuid.UUID, fn func(ctx context.Context) error) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		for _, key := range scheduleLockKeys(doctorID, patientID) {
			if _, err := r.q(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
				return fmt.Errorf("failed to acquire schedule lock: %w", err)
			}
		}
		return fn(ctx)
	})
}

func scheduleLockKeys(doctorID, patientID uuid.UUID) []int64 {
	keys := []int64{lockKey("doctor", doctorID), lockKey("patient", patientID)}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func lockKey(scope string, id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte(scope))
	h.Write(id[:])
	return int64(h.Sum64())
}
