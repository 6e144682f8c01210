package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Specialty struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// AvailabilityWindow is a recurring weekly time range during which a doctor
// accepts appointments. Weekday follows time.Weekday (0 = Sunday). A window
// never spans midnight: StartTime < EndTime always holds.
type AvailabilityWindow struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Weekday     int       `db:"weekday" json:"weekday"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	SlotMinutes int       `db:"slot_minutes" json:"slot_minutes"`
}

// StartMinutes returns the window start as minutes since midnight.
func (w *AvailabilityWindow) StartMinutes() (int, error) {
	return MinutesOfDay(w.StartTime)
}

// EndMinutes returns the window end as minutes since midnight.
func (w *AvailabilityWindow) EndMinutes() (int, error) {
	return MinutesOfDay(w.EndTime)
}

// MinutesOfDay parses an HH:MM clock value into minutes since midnight.
func MinutesOfDay(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

type Doctor struct {
	Base
	FirstName     string                `db:"first_name" json:"first_name"`
	LastName      string                `db:"last_name" json:"last_name"`
	DocumentID    string                `db:"document_id" json:"document_id"`
	LicenseNumber string                `db:"license_number" json:"license_number"`
	Email         *string               `db:"email" json:"email,omitempty"`
	Phone         *string               `db:"phone" json:"phone,omitempty"`
	Active        bool                  `db:"active" json:"active"`
	Specialties   []*Specialty          `db:"-" json:"specialties"`
	Availability  []*AvailabilityWindow `db:"-" json:"availability"`
}

// HasSpecialty reports whether the doctor is credentialed for the specialty.
func (d *Doctor) HasSpecialty(specialtyID uuid.UUID) bool {
	for _, s := range d.Specialties {
		if s.ID == specialtyID {
			return true
		}
	}
	return false
}

// WindowsOn returns the doctor's availability windows for a weekday.
func (d *Doctor) WindowsOn(weekday time.Weekday) []*AvailabilityWindow {
	var windows []*AvailabilityWindow
	for _, w := range d.Availability {
		if w.Weekday == int(weekday) {
			windows = append(windows, w)
		}
	}
	return windows
}

type AvailabilityWindowInput struct {
	Weekday     int    `json:"weekday" binding:"weekday"`
	StartTime   string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime     string `json:"end_time" binding:"required,datetime=15:04"`
	SlotMinutes int    `json:"slot_minutes"`
}

type CreateDoctorRequest struct {
	FirstName     string                    `json:"first_name" binding:"required,max=80"`
	LastName      string                    `json:"last_name" binding:"required,max=80"`
	DocumentID    string                    `json:"document_id" binding:"required,max=20"`
	LicenseNumber string                    `json:"license_number" binding:"required,max=40"`
	Email         *string                   `json:"email" binding:"omitempty,email"`
	Phone         *string                   `json:"phone" binding:"omitempty,max=30"`
	SpecialtyIDs  []uuid.UUID               `json:"specialty_ids"`
	Availability  []AvailabilityWindowInput `json:"availability"`
}

type UpdateDoctorRequest struct {
	FirstName     *string                   `json:"first_name"`
	LastName      *string                   `json:"last_name"`
	Email         *string                   `json:"email" binding:"omitempty,email"`
	Phone         *string                   `json:"phone"`
	LicenseNumber *string                   `json:"license_number"`
	Active        *bool                     `json:"active"`
	SpecialtyIDs  []uuid.UUID               `json:"specialty_ids"`
	Availability  []AvailabilityWindowInput `json:"availability"`
}
