package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type Service struct {
	repo repository.ReportRepository
	now  func() time.Time
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.now = clock }
}

func NewService(repo repository.ReportRepository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Summary(ctx context.Context) (*model.Summary, error) {
	return s.repo.Summary(ctx, s.now())
}

// AppointmentsPerDoctor counts appointments per doctor regardless of
// status, optionally restricted to a date range. Doctors without
// appointments in the range still show up with a zero total.
func (s *Service) AppointmentsPerDoctor(ctx context.Context, from, to string) ([]*model.DoctorAppointmentCount, error) {
	fromTime, toTime, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.AppointmentsPerDoctor(ctx, fromTime, toTime)
	if err != nil {
		return nil, err
	}

	label := rangeLabel(from, to)
	for _, row := range rows {
		row.DateRange = label
	}
	return rows, nil
}

func (s *Service) AppointmentsPerSpecialty(ctx context.Context) ([]*model.SpecialtyAppointmentCount, error) {
	return s.repo.AppointmentsPerSpecialty(ctx)
}

// AttendedPatients lists attended appointments inside a mandatory date range,
// optionally filtered by doctor or specialty.
func (s *Service) AttendedPatients(ctx context.Context, from, to string, doctorID, specialtyID *uuid.UUID) ([]*model.AttendedPatientRow, error) {
	if from == "" || to == "" {
		return nil, apperrors.MalformedInput("both from and to dates are required", nil)
	}
	fromTime, toTime, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.AttendedPatients(ctx, *fromTime, *toTime, doctorID, specialtyID)
}

// Attendance summarizes attended versus missed appointments in a mandatory
// date range. Reserved appointments whose start already passed count as
// absences alongside cancellations.
func (s *Service) Attendance(ctx context.Context, from, to string) (*model.AttendanceReport, error) {
	if from == "" || to == "" {
		return nil, apperrors.MalformedInput("both from and to dates are required", nil)
	}
	fromTime, toTime, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.Attendance(ctx, *fromTime, *toTime, s.now())
}

// parseRange expands YYYY-MM-DD bounds into timestamps covering the whole
// days: from at 00:00 and to at 23:59.
func parseRange(from, to string) (*time.Time, *time.Time, error) {
	var fromTime, toTime *time.Time
	if from != "" {
		t, err := time.ParseInLocation(model.TimestampLayout, from+"T00:00", time.Local)
		if err != nil {
			return nil, nil, apperrors.MalformedInput("invalid from date, use YYYY-MM-DD", err)
		}
		fromTime = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(model.TimestampLayout, to+"T23:59", time.Local)
		if err != nil {
			return nil, nil, apperrors.MalformedInput("invalid to date, use YYYY-MM-DD", err)
		}
		toTime = &t
	}
	if fromTime != nil && toTime != nil && fromTime.After(*toTime) {
		return nil, nil, apperrors.MalformedInput("the from date must not be after the to date", nil)
	}
	return fromTime, toTime, nil
}

func rangeLabel(from, to string) string {
	switch {
	case from != "" && to != "":
		return from + " to " + to
	case from != "":
		return "from " + from
	case to != "":
		return "until " + to
	default:
		return "all time"
	}
}
