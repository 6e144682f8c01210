package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type reminderRepository struct {
	BaseRepository
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO reminders (
			id, appointment_id, channel, scheduled_for, sent_at,
			status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q(ctx).ExecContext(ctx, query,
		reminder.ID,
		reminder.AppointmentID,
		reminder.Channel,
		reminder.ScheduledFor,
		reminder.SentAt,
		reminder.Status,
		reminder.ErrorMessage,
		reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Reminder, error) {
	query := `
		SELECT id, appointment_id, channel, scheduled_for, sent_at,
			   status, error_message, created_at
		FROM reminders
		WHERE appointment_id = $1
		ORDER BY scheduled_for ASC
	`
	var reminders []*model.Reminder
	if err := sqlx.SelectContext(ctx, r.q(ctx), &reminders, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// DuePending locks the returned rows for the duration of the enclosing
// transaction. Run it inside WithTx together with the status updates;
// outside one the locks are released at statement end and concurrent
// dispatcher instances can claim the same batch.
func (r *reminderRepository) DuePending(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	query := `
		SELECT id, appointment_id, channel, scheduled_for, sent_at,
			   status, error_message, created_at
		FROM reminders
		WHERE status = 'PENDING'
		AND scheduled_for <= $1
		ORDER BY scheduled_for ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	var reminders []*model.Reminder
	if err := sqlx.SelectContext(ctx, r.q(ctx), &reminders, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.q(ctx).ExecContext(ctx,
		`UPDATE reminders SET status = 'SENT', sent_at = $1, error_message = NULL WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reminder", nil)
	}
	return nil
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	result, err := r.q(ctx).ExecContext(ctx,
		`UPDATE reminders SET status = 'FAILED', error_message = $1 WHERE id = $2`, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reminder", nil)
	}
	return nil
}

func (r *reminderRepository) CancelLateForAppointment(ctx context.Context, appointmentID uuid.UUID, cutoff time.Time) (int64, error) {
	result, err := r.q(ctx).ExecContext(ctx,
		`UPDATE reminders SET status = 'CANCELLED'
		 WHERE appointment_id = $1 AND status = 'PENDING' AND scheduled_for > $2`,
		appointmentID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel late reminders: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
