package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type technicianRepository interface {
	List(ctx context.Context, filter models.ListQuery) ([]models.Technician, int, error)
	FindByID(ctx context.Context, id string) (*models.Technician, error)
	ExistsByRegistryNumber(ctx context.Context, registryNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, technician *models.Technician) error
	Update(ctx context.Context, technician *models.Technician) error
	Delete(ctx context.Context, id string) error
}

// TechnicianRequest holds the payload for creating and updating technicians.
type TechnicianRequest struct {
	Name           string `json:"name" validate:"required,max=160"`
	RegistryNumber string `json:"registry_number" validate:"required,max=40"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// TechnicianService handles safety technician use-cases.
type TechnicianService struct {
	repo      technicianRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTechnicianService constructs the technician service.
func NewTechnicianService(repo technicianRepository, validate *validator.Validate, logger *zap.Logger) *TechnicianService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TechnicianService{repo: repo, validator: validate, logger: logger}
}

// List returns technicians and the total count.
func (s *TechnicianService) List(ctx context.Context, filter models.ListQuery) ([]models.Technician, int, error) {
	filter.Normalize()
	technicians, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list technicians")
	}
	return technicians, total, nil
}

// Get returns one technician.
func (s *TechnicianService) Get(ctx context.Context, id string) (*models.Technician, error) {
	technician, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "technician not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load technician")
	}
	return technician, nil
}

func (s *TechnicianService) checkRegistry(ctx context.Context, registryNumber, excludeID string) error {
	exists, err := s.repo.ExistsByRegistryNumber(ctx, registryNumber, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate registry number")
	}
	if exists {
		return appErrors.NewFieldValidation("registry_number", "is already registered")
	}
	return nil
}

// Create registers a new technician.
func (s *TechnicianService) Create(ctx context.Context, req TechnicianRequest) (*models.Technician, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if err := s.checkRegistry(ctx, req.RegistryNumber, ""); err != nil {
		return nil, err
	}
	technician := &models.Technician{
		Name:           req.Name,
		RegistryNumber: req.RegistryNumber,
		Email:          req.Email,
	}
	if err := s.repo.Create(ctx, technician); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create technician")
	}
	s.logger.Info("technician created", zap.String("id", technician.ID))
	return technician, nil
}

// Update modifies an existing technician.
func (s *TechnicianService) Update(ctx context.Context, id string, req TechnicianRequest) (*models.Technician, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	technician, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "technician not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load technician")
	}
	if err := s.checkRegistry(ctx, req.RegistryNumber, id); err != nil {
		return nil, err
	}
	technician.Name = req.Name
	technician.RegistryNumber = req.RegistryNumber
	technician.Email = req.Email
	if err := s.repo.Update(ctx, technician); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update technician")
	}
	return technician, nil
}

// Delete removes a technician. Deleting an absent technician succeeds.
func (s *TechnicianService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete technician")
	}
	return nil
}
