package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
)

type reportRepository struct {
	BaseRepository
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *reportRepository) Summary(ctx context.Context, now time.Time) (*model.Summary, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients) AS patients,
			(SELECT COUNT(*) FROM doctors) AS doctors,
			(SELECT COUNT(*) FROM appointments
			 WHERE start_time >= $1 AND start_time < $2
			 AND status != 'cancelled') AS appointments_today
	`
	var summary model.Summary
	err := sqlx.GetContext(ctx, r.q(ctx), &summary, query, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return &summary, nil
}

func (r *reportRepository) AppointmentsPerDoctor(ctx context.Context, from, to *time.Time) ([]*model.DoctorAppointmentCount, error) {
	query := `
		SELECT d.id AS doctor_id,
			   d.last_name || ', ' || d.first_name AS doctor,
			   COUNT(a.id) AS total
		FROM doctors d
		LEFT JOIN appointments a ON a.doctor_id = d.id
	`
	var args []interface{}
	argCount := 1
	if from != nil {
		query += fmt.Sprintf(" AND a.start_time >= $%d", argCount)
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		query += fmt.Sprintf(" AND a.start_time <= $%d", argCount)
		args = append(args, *to)
		argCount++
	}
	query += `
		GROUP BY d.id, d.last_name, d.first_name
		ORDER BY d.last_name, d.first_name
	`

	var counts []*model.DoctorAppointmentCount
	if err := sqlx.SelectContext(ctx, r.q(ctx), &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count appointments per doctor: %w", err)
	}
	return counts, nil
}

func (r *reportRepository) AppointmentsPerSpecialty(ctx context.Context) ([]*model.SpecialtyAppointmentCount, error) {
	query := `
		SELECT s.name AS specialty, COUNT(a.id) AS total
		FROM specialties s
		LEFT JOIN appointments a ON a.specialty_id = s.id
		GROUP BY s.id, s.name
		ORDER BY s.name
	`
	var counts []*model.SpecialtyAppointmentCount
	if err := sqlx.SelectContext(ctx, r.q(ctx), &counts, query); err != nil {
		return nil, fmt.Errorf("failed to count appointments per specialty: %w", err)
	}
	return counts, nil
}

func (r *reportRepository) AttendedPatients(ctx context.Context, from, to time.Time, doctorID, specialtyID *uuid.UUID) ([]*model.AttendedPatientRow, error) {
	query := `
		SELECT to_char(a.start_time, 'YYYY-MM-DD"T"HH24:MI') AS date,
			   p.last_name || ', ' || p.first_name AS patient,
			   d.last_name || ', ' || d.first_name AS doctor,
			   s.name AS specialty
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN specialties s ON s.id = a.specialty_id
		WHERE a.status = 'attended'
		AND a.start_time >= $1
		AND a.start_time <= $2
	`
	args := []interface{}{from, to}
	argCount := 3
	if doctorID != nil {
		query += fmt.Sprintf(" AND a.doctor_id = $%d", argCount)
		args = append(args, *doctorID)
		argCount++
	}
	if specialtyID != nil {
		query += fmt.Sprintf(" AND a.specialty_id = $%d", argCount)
		args = append(args, *specialtyID)
		argCount++
	}
	query += " ORDER BY a.start_time"

	var rows []*model.AttendedPatientRow
	if err := sqlx.SelectContext(ctx, r.q(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list attended patients: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) Attendance(ctx context.Context, from, to, now time.Time) (*model.AttendanceReport, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'attended') AS attended,
			COUNT(*) FILTER (WHERE status IN ('reserved', 'rescheduled') AND start_time < $3) AS reserved_past,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM appointments
		WHERE start_time >= $1 AND start_time <= $2
	`
	var row struct {
		Attended     int `db:"attended"`
		ReservedPast int `db:"reserved_past"`
		Cancelled    int `db:"cancelled"`
	}
	if err := sqlx.GetContext(ctx, r.q(ctx), &row, query, from, to, now); err != nil {
		return nil, fmt.Errorf("failed to build attendance report: %w", err)
	}
	return &model.AttendanceReport{
		Attended:  row.Attended,
		Absences:  row.ReservedPast + row.Cancelled,
		Cancelled: row.Cancelled,
	}, nil
}
