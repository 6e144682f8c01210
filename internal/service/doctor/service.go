package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/turnero/clinic-api/internal/model"
	"github.com/turnero/clinic-api/internal/repository"
	apperrors "github.com/turnero/clinic-api/pkg/errors"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	windows, err := buildWindows(req.Availability)
	if err != nil {
		return nil, err
	}

	doctor := &model.Doctor{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DocumentID:    req.DocumentID,
		LicenseNumber: req.LicenseNumber,
		Email:         req.Email,
		Phone:         req.Phone,
		Active:        true,
		Specialties:   specialtyRefs(req.SpecialtyIDs),
		Availability:  windows,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, doctor.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		doctor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.Email != nil {
		doctor.Email = req.Email
	}
	if req.Phone != nil {
		doctor.Phone = req.Phone
	}
	if req.LicenseNumber != nil {
		doctor.LicenseNumber = *req.LicenseNumber
	}
	if req.Active != nil {
		doctor.Active = *req.Active
	}
	if req.SpecialtyIDs != nil {
		doctor.Specialties = specialtyRefs(req.SpecialtyIDs)
	}
	if req.Availability != nil {
		windows, err := buildWindows(req.Availability)
		if err != nil {
			return nil, err
		}
		doctor.Availability = windows
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Deactivate retires a doctor without touching historical appointments.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	return s.repo.ListSpecialties(ctx)
}

func buildWindows(inputs []model.AvailabilityWindowInput) ([]*model.AvailabilityWindow, error) {
	var windows []*model.AvailabilityWindow
	for _, input := range inputs {
		start, err := model.MinutesOfDay(input.StartTime)
		if err != nil {
			return nil, apperrors.MalformedInput("invalid window start, use HH:MM", err)
		}
		end, err := model.MinutesOfDay(input.EndTime)
		if err != nil {
			return nil, apperrors.MalformedInput("invalid window end, use HH:MM", err)
		}
		if start >= end {
			return nil, apperrors.MalformedInput("the window start must be before its end", nil)
		}

		slotMinutes := input.SlotMinutes
		if slotMinutes == 0 {
			slotMinutes = model.DefaultDurationMin
		}
		windows = append(windows, &model.AvailabilityWindow{
			Weekday:     input.Weekday,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			SlotMinutes: slotMinutes,
		})
	}
	return windows, nil
}

func specialtyRefs(ids []uuid.UUID) []*model.Specialty {
	var specialties []*model.Specialty
	for _, id := range ids {
		specialties = append(specialties, &model.Specialty{ID: id})
	}
	return specialties
}
