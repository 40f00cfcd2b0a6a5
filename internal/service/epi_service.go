package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type epiRepository interface {
	List(ctx context.Context, filter models.EpiFilter) ([]models.EpiDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EpiDetail, error)
	ExistsByCANumber(ctx context.Context, caNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, epi *models.Epi) error
	Update(ctx context.Context, epi *models.Epi) error
	Delete(ctx context.Context, id string) error
}

// EpiRequest holds the payload for creating and updating equipment.
type EpiRequest struct {
	Name         string  `json:"name" validate:"required,max=160"`
	CANumber     string  `json:"ca_number" validate:"required,max=20"`
	BrandID      *string `json:"brand_id"`
	ValidityDays int     `json:"validity_days" validate:"gte=0"`
	Description  string  `json:"description"`
}

// EpiService handles protective equipment use-cases.
type EpiService struct {
	repo      epiRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEpiService constructs the EPI service.
func NewEpiService(repo epiRepository, validate *validator.Validate, logger *zap.Logger) *EpiService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EpiService{repo: repo, validator: validate, logger: logger}
}

// List returns EPIs and the total count.
func (s *EpiService) List(ctx context.Context, filter models.EpiFilter) ([]models.EpiDetail, int, error) {
	filter.Normalize()
	epis, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list epis")
	}
	return epis, total, nil
}

// Get returns an EPI detail.
func (s *EpiService) Get(ctx context.Context, id string) (*models.EpiDetail, error) {
	epi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "epi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load epi")
	}
	return epi, nil
}

func (s *EpiService) checkCANumber(ctx context.Context, caNumber, excludeID string) error {
	exists, err := s.repo.ExistsByCANumber(ctx, caNumber, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate ca number")
	}
	if exists {
		return appErrors.NewFieldValidation("ca_number", "is already registered")
	}
	return nil
}

// Create registers a new EPI.
func (s *EpiService) Create(ctx context.Context, req EpiRequest) (*models.EpiDetail, error) {
	req.CANumber = strings.TrimSpace(req.CANumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if err := s.checkCANumber(ctx, req.CANumber, ""); err != nil {
		return nil, err
	}
	epi := &models.Epi{
		Name:         req.Name,
		CANumber:     req.CANumber,
		BrandID:      req.BrandID,
		ValidityDays: req.ValidityDays,
		Description:  req.Description,
	}
	if err := s.repo.Create(ctx, epi); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create epi")
	}
	s.logger.Info("epi created", zap.String("id", epi.ID))
	return s.Get(ctx, epi.ID)
}

// Update modifies an existing EPI.
func (s *EpiService) Update(ctx context.Context, id string, req EpiRequest) (*models.EpiDetail, error) {
	req.CANumber = strings.TrimSpace(req.CANumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "epi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load epi")
	}
	if err := s.checkCANumber(ctx, req.CANumber, id); err != nil {
		return nil, err
	}
	epi := detail.Epi
	epi.Name = req.Name
	epi.CANumber = req.CANumber
	epi.BrandID = req.BrandID
	epi.ValidityDays = req.ValidityDays
	epi.Description = req.Description
	if err := s.repo.Update(ctx, &epi); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update epi")
	}
	return s.Get(ctx, id)
}

// Delete removes an EPI. Deleting an absent EPI succeeds.
func (s *EpiService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete epi")
	}
	return nil
}
