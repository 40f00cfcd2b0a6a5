package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/pkg/broker"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/storage"
)

type uploadRepository interface {
	List(ctx context.Context, filter models.UploadFilter) ([]models.Upload, int, error)
	FindByID(ctx context.Context, id string) (*models.Upload, error)
	BySubject(ctx context.Context, subjectType models.UploadSubject, subjectID string) ([]models.Upload, error)
	Create(ctx context.Context, upload *models.Upload) error
	Update(ctx context.Context, upload *models.Upload) error
	UpdateStatus(ctx context.Context, id string, status models.UploadStatus) error
	Delete(ctx context.Context, id string) error
}

// UploadFile carries the incoming multipart file part.
type UploadFile struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// UploadRequest holds the metadata fields of the multipart form.
type UploadRequest struct {
	SubjectType       models.UploadSubject `json:"subject_type" validate:"required"`
	SubjectID         string               `json:"subject_id" validate:"required"`
	DocumentVersionID *string              `json:"document_version_id"`
	Status            models.UploadStatus  `json:"status"`
	IssueDate         *time.Time           `json:"issue_date"`
	DueDate           *time.Time           `json:"due_date"`
}

// UploadService handles attachment use-cases: storage, review status and
// signed view URLs.
type UploadService struct {
	repo      uploadRepository
	store     *storage.LocalStorage
	signer    *storage.ViewTokenSigner
	publisher *broker.Publisher
	maxSize   int64
	allowed   map[string]bool
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUploadService constructs the upload service.
func NewUploadService(repo uploadRepository, store *storage.LocalStorage, signer *storage.ViewTokenSigner, publisher *broker.Publisher, maxSize int64, allowedMIMEs []string, validate *validator.Validate, logger *zap.Logger) *UploadService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(allowedMIMEs))
	for _, m := range allowedMIMEs {
		allowed[m] = true
	}
	return &UploadService{
		repo:      repo,
		store:     store,
		signer:    signer,
		publisher: publisher,
		maxSize:   maxSize,
		allowed:   allowed,
		validator: validate,
		logger:    logger,
	}
}

func (s *UploadService) detail(upload models.Upload) models.UploadDetail {
	detail := models.UploadDetail{Upload: upload}
	token, _, err := s.signer.Generate(upload.ID)
	if err == nil {
		detail.FileURL = fmt.Sprintf("/uploads/view/%s?token=%s", upload.ID, token)
	}
	return detail
}

// Detail wraps uploads with their signed view URL.
func (s *UploadService) Detail(uploads []models.Upload) []models.UploadDetail {
	details := make([]models.UploadDetail, 0, len(uploads))
	for _, u := range uploads {
		details = append(details, s.detail(u))
	}
	return details
}

// List returns uploads and the total count.
func (s *UploadService) List(ctx context.Context, filter models.UploadFilter) ([]models.UploadDetail, int, error) {
	filter.Normalize()
	uploads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uploads")
	}
	return s.Detail(uploads), total, nil
}

// Get returns one upload with its view URL.
func (s *UploadService) Get(ctx context.Context, id string) (*models.UploadDetail, error) {
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	detail := s.detail(*upload)
	return &detail, nil
}

// BySubject returns the uploads attached to one entity.
func (s *UploadService) BySubject(ctx context.Context, subjectType models.UploadSubject, subjectID string) ([]models.UploadDetail, error) {
	uploads, err := s.repo.BySubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load uploads")
	}
	return s.Detail(uploads), nil
}

func (s *UploadService) checkFile(file *UploadFile) error {
	if file == nil || file.Name == "" {
		return appErrors.NewFieldValidation("file", "is required")
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return appErrors.NewFieldValidation("file", fmt.Sprintf("exceeds the %d byte limit", s.maxSize))
	}
	if len(s.allowed) > 0 && !s.allowed[file.MimeType] {
		return appErrors.NewFieldValidation("file", "has an unsupported content type")
	}
	return nil
}

func (s *UploadService) saveFile(id string, file *UploadFile) (string, error) {
	ext := filepath.Ext(file.Name)
	stored := filepath.Join(id[:2], id+ext)
	if _, err := s.store.SaveStream(stored, file.Reader); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	return stored, nil
}

// Create stores the file and registers the upload record.
func (s *UploadService) Create(ctx context.Context, req UploadRequest, file *UploadFile) (*models.UploadDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if !req.SubjectType.Valid() {
		return nil, appErrors.NewFieldValidation("subject_type", "is invalid")
	}
	if req.Status == "" {
		req.Status = models.UploadStatusPending
	}
	if !req.Status.Valid() {
		return nil, appErrors.NewFieldValidation("status", "is invalid")
	}
	if err := s.checkFile(file); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path, err := s.saveFile(id, file)
	if err != nil {
		return nil, err
	}
	upload := &models.Upload{
		ID:                id,
		SubjectType:       req.SubjectType,
		SubjectID:         req.SubjectID,
		DocumentVersionID: req.DocumentVersionID,
		Status:            req.Status,
		IssueDate:         req.IssueDate,
		DueDate:           req.DueDate,
		FileName:          file.Name,
		FilePath:          path,
		MimeType:          file.MimeType,
		SizeBytes:         file.Size,
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		_ = s.store.Delete(path)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create upload")
	}
	s.logger.Info("upload created", zap.String("id", upload.ID), zap.String("subject", string(upload.SubjectType)))
	if err := s.publisher.Publish(ctx, "upload.created", map[string]string{"id": upload.ID, "subject_type": string(upload.SubjectType), "subject_id": upload.SubjectID}); err != nil {
		s.logger.Warn("failed to publish upload event", zap.Error(err))
	}
	detail := s.detail(*upload)
	return &detail, nil
}

// Update replaces the upload metadata and, when a file part is present, the
// stored blob.
func (s *UploadService) Update(ctx context.Context, id string, req UploadRequest, file *UploadFile) (*models.UploadDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if !req.SubjectType.Valid() {
		return nil, appErrors.NewFieldValidation("subject_type", "is invalid")
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, appErrors.NewFieldValidation("status", "is invalid")
	}
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}

	oldPath := ""
	if file != nil {
		if err := s.checkFile(file); err != nil {
			return nil, err
		}
		path, err := s.saveFile(id, file)
		if err != nil {
			return nil, err
		}
		if path != upload.FilePath {
			oldPath = upload.FilePath
		}
		upload.FilePath = path
		upload.FileName = file.Name
		upload.MimeType = file.MimeType
		upload.SizeBytes = file.Size
	}

	upload.SubjectType = req.SubjectType
	upload.SubjectID = req.SubjectID
	upload.DocumentVersionID = req.DocumentVersionID
	if req.Status != "" {
		upload.Status = req.Status
	}
	upload.IssueDate = req.IssueDate
	upload.DueDate = req.DueDate
	if err := s.repo.Update(ctx, upload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update upload")
	}
	if oldPath != "" {
		_ = s.store.Delete(oldPath)
	}
	detail := s.detail(*upload)
	return &detail, nil
}

// UpdateStatus moves the upload to a new review status. Transitions are free
// so reviewers can revert mistakes.
func (s *UploadService) UpdateStatus(ctx context.Context, id string, status models.UploadStatus) (*models.UploadDetail, error) {
	if !status.Valid() {
		return nil, appErrors.NewFieldValidation("status", "is invalid")
	}
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update upload status")
	}
	upload.Status = status
	if err := s.publisher.Publish(ctx, "upload.status_changed", map[string]string{"id": id, "status": string(status)}); err != nil {
		s.logger.Warn("failed to publish upload event", zap.Error(err))
	}
	detail := s.detail(*upload)
	return &detail, nil
}

// OpenFile validates the view token and returns the stored file for
// streaming. A valid bearer caller passes an empty token.
func (s *UploadService) OpenFile(ctx context.Context, id, token string, authenticated bool) (*models.Upload, *os.File, error) {
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "upload not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	if !authenticated {
		if err := s.signer.Validate(id, token); err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired view token")
		}
	}
	file, err := s.store.Open(upload.FilePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return upload, file, nil
}

// Delete removes the upload record and its stored file. Deleting an absent
// upload succeeds.
func (s *UploadService) Delete(ctx context.Context, id string) error {
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete upload")
	}
	_ = s.store.Delete(upload.FilePath)
	return nil
}
