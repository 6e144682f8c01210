package model

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionStatusActive  PrescriptionStatus = "ACTIVE"
	PrescriptionStatusVoided  PrescriptionStatus = "VOIDED"
	PrescriptionStatusExpired PrescriptionStatus = "EXPIRED"
)

// Consultation is the clinical record attached to an attended appointment.
// At most one exists per appointment.
type Consultation struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	Motive        *string       `db:"motive" json:"motive,omitempty"`
	Observations  *string       `db:"observations" json:"observations,omitempty"`
	Diagnosis     *string       `db:"diagnosis" json:"diagnosis,omitempty"`
	Indications   *string       `db:"indications" json:"indications,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	Prescription  *Prescription `db:"-" json:"prescription,omitempty"`
}

type Prescription struct {
	ID               uuid.UUID           `db:"id" json:"id"`
	ConsultationID   uuid.UUID           `db:"consultation_id" json:"consultation_id"`
	IssueDate        time.Time           `db:"issue_date" json:"issue_date"`
	Status           PrescriptionStatus  `db:"status" json:"status"`
	DigitalSignature *string             `db:"digital_signature" json:"digital_signature,omitempty"`
	Items            []*PrescriptionItem `db:"-" json:"items"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Position       int       `db:"position" json:"position"`
	Drug           string    `db:"drug" json:"drug"`
	Dose           *string   `db:"dose" json:"dose,omitempty"`
	Frequency      *string   `db:"frequency" json:"frequency,omitempty"`
	Duration       *string   `db:"duration" json:"duration,omitempty"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
}

type PrescriptionItemInput struct {
	Drug         string  `json:"drug" binding:"required,max=200"`
	Dose         *string `json:"dose"`
	Frequency    *string `json:"frequency"`
	Duration     *string `json:"duration"`
	Instructions *string `json:"instructions"`
}

type PrescriptionInput struct {
	IssueDate        string                  `json:"issue_date" binding:"required,datetime=2006-01-02"`
	Status           PrescriptionStatus      `json:"status" binding:"omitempty,oneof=ACTIVE VOIDED EXPIRED"`
	DigitalSignature *string                 `json:"digital_signature"`
	Items            []PrescriptionItemInput `json:"items" binding:"dive"`
}

type RecordConsultationRequest struct {
	Motive       *string            `json:"motive"`
	Observations *string            `json:"observations"`
	Diagnosis    *string            `json:"diagnosis"`
	Indications  *string            `json:"indications"`
	Prescription *PrescriptionInput `json:"prescription"`
}
