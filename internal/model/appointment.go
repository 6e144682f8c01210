package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusReserved    AppointmentStatus = "reserved"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusAttended    AppointmentStatus = "attended"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusAttended
}

// DefaultDurationMin is applied when a booking omits the duration.
const DefaultDurationMin = 30

type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	SpecialtyID     uuid.UUID         `db:"specialty_id" json:"specialty_id"`
	StartTime       time.Time         `db:"start_time" json:"start_time"`
	DurationMin     int               `db:"duration_min" json:"duration_min"`
	Status          AppointmentStatus `db:"status" json:"status"`
	PrescriptionURL *string           `db:"prescription_url" json:"prescription_url,omitempty"`
}

// EndTime returns the exclusive end of the appointment interval.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMin) * time.Minute)
}

// Overlaps reports whether [start, end) intersects the appointment's
// interval under the half-open rule.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime())
}

type CreateAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID    uuid.UUID `json:"doctor_id" binding:"required"`
	SpecialtyID uuid.UUID `json:"specialty_id" binding:"required"`
	StartTime   string    `json:"start_time" binding:"required,datetime=2006-01-02T15:04"`
	// DurationMin defaults only when absent; an explicit zero is rejected.
	DurationMin *int `json:"duration_min" binding:"omitempty,gt=0"`
}

type UpdateAppointmentRequest struct {
	PatientID   *uuid.UUID `json:"patient_id"`
	DoctorID    *uuid.UUID `json:"doctor_id"`
	SpecialtyID *uuid.UUID `json:"specialty_id"`
	StartTime   *string    `json:"start_time" binding:"omitempty,datetime=2006-01-02T15:04"`
	DurationMin *int       `json:"duration_min"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	From      time.Time
	To        time.Time
}

// Slot is a candidate bookable interval inside an availability window.
// Start and End are clock times; Timestamp is the full start instant.
type Slot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Timestamp string `json:"timestamp"`
}
