package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderChannel string

const (
	ReminderChannelEmail ReminderChannel = "EMAIL"
	ReminderChannelSMS   ReminderChannel = "SMS"
	ReminderChannelPush  ReminderChannel = "PUSH"
)

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "PENDING"
	ReminderStatusSent      ReminderStatus = "SENT"
	ReminderStatusFailed    ReminderStatus = "FAILED"
	ReminderStatusCancelled ReminderStatus = "CANCELLED"
)

// MinReminderLead is the minimum interval between a reminder's send time
// and the appointment start.
const MinReminderLead = 24 * time.Hour

type Reminder struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	Channel       ReminderChannel `db:"channel" json:"channel"`
	ScheduledFor  time.Time       `db:"scheduled_for" json:"scheduled_for"`
	SentAt        *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	Status        ReminderStatus  `db:"status" json:"status"`
	ErrorMessage  *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type ScheduleReminderRequest struct {
	Channel string `json:"channel" binding:"required"`
	SendAt  string `json:"send_at" binding:"required,datetime=2006-01-02T15:04"`
}
