package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type documentRepository interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.DocumentDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	VersionIDsInUse(ctx context.Context, versionIDs []string) ([]string, error)
	Create(ctx context.Context, document *models.Document, versions []models.DocumentVersion) error
	Update(ctx context.Context, document *models.Document, keepIDs []string, newVersions []models.DocumentVersion) error
	Delete(ctx context.Context, id string) error
}

// DocumentVersionRequest is one version row in the document payload. Rows
// carrying an ID refer to existing versions and stay untouched.
type DocumentVersionRequest struct {
	ID       string     `json:"id"`
	Label    string     `json:"label" validate:"required,max=60"`
	Notes    string     `json:"notes"`
	IssuedAt *time.Time `json:"issued_at"`
}

// DocumentRequest holds the payload for creating and updating documents.
type DocumentRequest struct {
	Code         string                   `json:"code" validate:"required,max=40"`
	Name         string                   `json:"name" validate:"required,max=160"`
	Category     string                   `json:"category" validate:"max=60"`
	IssuerID     *string                  `json:"issuer_id"`
	Required     bool                     `json:"required"`
	ValidityDays int                      `json:"validity_days" validate:"gte=0"`
	Versions     []DocumentVersionRequest `json:"versions" validate:"dive"`
}

// DocumentService handles document use-cases.
type DocumentService struct {
	repo      documentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs the document service.
func NewDocumentService(repo documentRepository, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{repo: repo, validator: validate, logger: logger}
}

// List returns documents and the total count.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentDetail, int, error) {
	filter.Normalize()
	documents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, total, nil
}

// Get returns a document detail, versions included.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.DocumentDetail, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return document, nil
}

func splitVersions(rows []DocumentVersionRequest) (keepIDs []string, newVersions []models.DocumentVersion) {
	for _, row := range rows {
		if row.ID != "" {
			keepIDs = append(keepIDs, row.ID)
			continue
		}
		newVersions = append(newVersions, models.DocumentVersion{
			Label:    row.Label,
			Notes:    row.Notes,
			IssuedAt: row.IssuedAt,
		})
	}
	return keepIDs, newVersions
}

func (s *DocumentService) checkCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate code")
	}
	if exists {
		return appErrors.NewFieldValidation("code", "is already taken")
	}
	return nil
}

// Create registers a new document with its initial versions.
func (s *DocumentService) Create(ctx context.Context, req DocumentRequest) (*models.DocumentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if err := s.checkCode(ctx, req.Code, ""); err != nil {
		return nil, err
	}
	_, versions := splitVersions(req.Versions)
	document := &models.Document{
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		IssuerID:     req.IssuerID,
		Required:     req.Required,
		ValidityDays: req.ValidityDays,
	}
	if err := s.repo.Create(ctx, document, versions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}
	s.logger.Info("document created", zap.String("id", document.ID))
	return s.Get(ctx, document.ID)
}

// Update modifies a document. Versions absent from the payload are pruned,
// unless an upload still references them, which is a conflict.
func (s *DocumentService) Update(ctx context.Context, id string, req DocumentRequest) (*models.DocumentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if err := s.checkCode(ctx, req.Code, id); err != nil {
		return nil, err
	}
	keepIDs, newVersions := splitVersions(req.Versions)

	keep := map[string]bool{}
	for _, keepID := range keepIDs {
		keep[keepID] = true
	}
	var dropped []string
	for _, v := range detail.Versions {
		if !keep[v.ID] {
			dropped = append(dropped, v.ID)
		}
	}
	inUse, err := s.repo.VersionIDsInUse(ctx, dropped)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check version usage")
	}
	if len(inUse) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "version has uploads attached")
	}

	document := detail.Document
	document.Code = req.Code
	document.Name = req.Name
	document.Category = req.Category
	document.IssuerID = req.IssuerID
	document.Required = req.Required
	document.ValidityDays = req.ValidityDays
	if err := s.repo.Update(ctx, &document, keepIDs, newVersions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}
	return s.Get(ctx, id)
}

// Delete removes a document unless uploads still reference its versions.
// Deleting an absent document succeeds.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	versionIDs := make([]string, 0, len(detail.Versions))
	for _, v := range detail.Versions {
		versionIDs = append(versionIDs, v.ID)
	}
	inUse, err := s.repo.VersionIDsInUse(ctx, versionIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check version usage")
	}
	if len(inUse) > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "document has uploads attached")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	return nil
}
