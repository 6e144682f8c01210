package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Wire formats for temporal values. Timestamps are naive local date-times
// with minute precision; the system is single-location and timezone-unaware.
const (
	TimestampLayout = "2006-01-02T15:04"
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04"
)
