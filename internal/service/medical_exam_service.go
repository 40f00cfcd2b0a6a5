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

type medicalExamRepository interface {
	List(ctx context.Context, filter models.MedicalExamFilter) ([]models.MedicalExamDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.MedicalExamDetail, error)
	Create(ctx context.Context, exam *models.MedicalExam) error
	Update(ctx context.Context, exam *models.MedicalExam) error
	Delete(ctx context.Context, id string) error
}

type examAttachmentLoader interface {
	BySubject(ctx context.Context, subjectType models.UploadSubject, subjectID string) ([]models.UploadDetail, error)
}

// MedicalExamRequest holds the payload for creating and updating exams.
type MedicalExamRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	ExamType   string    `json:"exam_type" validate:"required"`
	ExamDate   time.Time `json:"exam_date" validate:"required"`
	Fit        bool      `json:"fit"`
	CIDCode    string    `json:"cid_code" validate:"max=10"`
	Notes      string    `json:"notes"`
}

// MedicalExamService handles occupational exam use-cases.
type MedicalExamService struct {
	repo        medicalExamRepository
	attachments examAttachmentLoader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMedicalExamService constructs the exam service.
func NewMedicalExamService(repo medicalExamRepository, attachments examAttachmentLoader, validate *validator.Validate, logger *zap.Logger) *MedicalExamService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MedicalExamService{repo: repo, attachments: attachments, validator: validate, logger: logger}
}

// List returns exams and the total count.
func (s *MedicalExamService) List(ctx context.Context, filter models.MedicalExamFilter) ([]models.MedicalExamDetail, int, error) {
	filter.Normalize()
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list medical exams")
	}
	return exams, total, nil
}

// Get returns an exam detail, attachments included.
func (s *MedicalExamService) Get(ctx context.Context, id string) (*models.MedicalExamDetail, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical exam")
	}
	if s.attachments != nil {
		attachments, err := s.attachments.BySubject(ctx, models.SubjectMedicalExam, id)
		if err != nil {
			return nil, err
		}
		exam.Attachments = attachments
	}
	return exam, nil
}

// Create registers a new exam record.
func (s *MedicalExamService) Create(ctx context.Context, req MedicalExamRequest) (*models.MedicalExamDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	examType := models.ExamType(req.ExamType)
	if !examType.Valid() {
		return nil, appErrors.NewFieldValidation("exam_type", "is invalid")
	}
	exam := &models.MedicalExam{
		EmployeeID: req.EmployeeID,
		ExamType:   examType,
		ExamDate:   req.ExamDate,
		Fit:        req.Fit,
		CIDCode:    req.CIDCode,
		Notes:      req.Notes,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create medical exam")
	}
	s.logger.Info("medical exam created", zap.String("id", exam.ID))
	return s.Get(ctx, exam.ID)
}

// Update modifies an existing exam record.
func (s *MedicalExamService) Update(ctx context.Context, id string, req MedicalExamRequest) (*models.MedicalExamDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	examType := models.ExamType(req.ExamType)
	if !examType.Valid() {
		return nil, appErrors.NewFieldValidation("exam_type", "is invalid")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical exam")
	}
	exam := detail.MedicalExam
	exam.EmployeeID = req.EmployeeID
	exam.ExamType = examType
	exam.ExamDate = req.ExamDate
	exam.Fit = req.Fit
	exam.CIDCode = req.CIDCode
	exam.Notes = req.Notes
	if err := s.repo.Update(ctx, &exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update medical exam")
	}
	return s.Get(ctx, id)
}

// Delete removes an exam record. Deleting an absent exam succeeds.
func (s *MedicalExamService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete medical exam")
	}
	return nil
}
