package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type Service struct {
	reminders    repository.ReminderRepository
	appointments repository.AppointmentRepository
}

func NewService(reminders repository.ReminderRepository, appointments repository.AppointmentRepository) *Service {
	return &Service{
		reminders:    reminders,
		appointments: appointments,
	}
}

// Schedule persists a pending reminder for a reserved appointment. The send
// time must leave at least 24 hours of lead before the appointment start.
// Delivery is someone else's job: the dispatcher picks up pending rows.
func (s *Service) Schedule(ctx context.Context, appointmentID uuid.UUID, req *model.ScheduleReminderRequest) (*model.Reminder, error) {
	sendAt, err := time.ParseInLocation(model.TimestampLayout, req.SendAt, time.Local)
	if err != nil {
		return nil, apperrors.MalformedInput("invalid date format, use YYYY-MM-DDTHH:MM", err)
	}

	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.AppointmentStatusReserved {
		return nil, apperrors.InvalidTemporalState("reminders are only allowed for reserved appointments")
	}
	if sendAt.After(appointment.StartTime.Add(-model.MinReminderLead)) {
		return nil, apperrors.InsufficientLeadTime("the reminder must be scheduled at least 24 hours before the appointment")
	}

	channel := model.ReminderChannel(strings.ToUpper(req.Channel))
	switch channel {
	case model.ReminderChannelEmail, model.ReminderChannelSMS, model.ReminderChannelPush:
	default:
		return nil, apperrors.InvalidChannel("the channel must be one of EMAIL, SMS, PUSH")
	}

	reminder := &model.Reminder{
		AppointmentID: appointmentID,
		Channel:       channel,
		ScheduledFor:  sendAt,
		Status:        model.ReminderStatusPending,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// List returns the appointment's reminders ordered by send time.
func (s *Service) List(ctx context.Context, appointmentID uuid.UUID) ([]*model.Reminder, error) {
	if _, err := s.appointments.Get(ctx, appointmentID); err != nil {
		return nil, err
	}
	return s.reminders.ListForAppointment(ctx, appointmentID)
}
