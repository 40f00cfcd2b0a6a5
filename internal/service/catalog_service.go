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

type catalogRepository interface {
	List(ctx context.Context, def models.CatalogDefinition, filter models.ListQuery) ([]models.CatalogEntry, int, error)
	FindByID(ctx context.Context, def models.CatalogDefinition, id string) (*models.CatalogEntry, error)
	ExistsByName(ctx context.Context, def models.CatalogDefinition, name string, excludeID string) (bool, error)
	Create(ctx context.Context, def models.CatalogDefinition, entry *models.CatalogEntry) error
	Update(ctx context.Context, def models.CatalogDefinition, entry *models.CatalogEntry) error
	Delete(ctx context.Context, def models.CatalogDefinition, id string) error
}

// CatalogEntryRequest holds the payload shared by every lookup resource.
type CatalogEntryRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// CatalogService handles the name-only lookup resources with one code path.
type CatalogService struct {
	repo      catalogRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo catalogRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, validator: validate, logger: logger}
}

// Resolve maps a URL slug to its catalog definition.
func (s *CatalogService) Resolve(slug string) (models.CatalogDefinition, error) {
	def, ok := models.CatalogBySlug(slug)
	if !ok {
		return models.CatalogDefinition{}, appErrors.Clone(appErrors.ErrNotFound, "unknown catalog")
	}
	return def, nil
}

// List returns catalog entries and the total count.
func (s *CatalogService) List(ctx context.Context, def models.CatalogDefinition, filter models.ListQuery) ([]models.CatalogEntry, int, error) {
	filter.Normalize()
	entries, total, err := s.repo.List(ctx, def, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+def.Label+"s")
	}
	return entries, total, nil
}

// Get returns one catalog entry.
func (s *CatalogService) Get(ctx context.Context, def models.CatalogDefinition, id string) (*models.CatalogEntry, error) {
	entry, err := s.repo.FindByID(ctx, def, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, def.Label+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+def.Label)
	}
	return entry, nil
}

// Create registers a new catalog entry.
func (s *CatalogService) Create(ctx context.Context, def models.CatalogDefinition, req CatalogEntryRequest) (*models.CatalogEntry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	exists, err := s.repo.ExistsByName(ctx, def, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate name")
	}
	if exists {
		return nil, appErrors.NewFieldValidation("name", "is already taken")
	}
	entry := &models.CatalogEntry{Name: req.Name}
	if err := s.repo.Create(ctx, def, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create "+def.Label)
	}
	s.logger.Info("catalog entry created", zap.String("catalog", def.Slug), zap.String("id", entry.ID))
	return entry, nil
}

// Update renames an existing catalog entry.
func (s *CatalogService) Update(ctx context.Context, def models.CatalogDefinition, id string, req CatalogEntryRequest) (*models.CatalogEntry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	entry, err := s.repo.FindByID(ctx, def, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, def.Label+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+def.Label)
	}
	exists, err := s.repo.ExistsByName(ctx, def, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate name")
	}
	if exists {
		return nil, appErrors.NewFieldValidation("name", "is already taken")
	}
	entry.Name = req.Name
	if err := s.repo.Update(ctx, def, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+def.Label)
	}
	return entry, nil
}

// Delete removes a catalog entry. Deleting an absent entry succeeds so
// repeated deletes stay safe.
func (s *CatalogService) Delete(ctx context.Context, def models.CatalogDefinition, id string) error {
	if err := s.repo.Delete(ctx, def, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete "+def.Label)
	}
	return nil
}
