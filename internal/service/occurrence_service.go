package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/pkg/broker"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/export"
)

type occurrenceRepository interface {
	List(ctx context.Context, filter models.OccurrenceFilter) ([]models.OccurrenceDetail, int, error)
	ListAll(ctx context.Context, filter models.OccurrenceFilter) ([]models.OccurrenceDetail, error)
	FindByID(ctx context.Context, id string) (*models.OccurrenceDetail, error)
	Create(ctx context.Context, occurrence *models.Occurrence) error
	Update(ctx context.Context, occurrence *models.Occurrence) error
	Delete(ctx context.Context, id string) error
}

// OccurrenceRequest holds the payload for creating and updating occurrences.
type OccurrenceRequest struct {
	CompanyID        string    `json:"company_id" validate:"required"`
	SectorID         *string   `json:"sector_id"`
	EmployeeID       *string   `json:"employee_id"`
	OccurrenceTypeID *string   `json:"occurrence_type_id"`
	OccurredAt       time.Time `json:"occurred_at" validate:"required"`
	Description      string    `json:"description" validate:"required"`
	ActionsTaken     string    `json:"actions_taken"`
	Classification   string    `json:"classification" validate:"required"`
	Severity         string    `json:"severity" validate:"required"`
	Status           string    `json:"status"`
}

// OccurrenceService handles workplace occurrence use-cases.
type OccurrenceService struct {
	repo      occurrenceRepository
	csv       *export.CSVExporter
	publisher *broker.Publisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOccurrenceService constructs the occurrence service.
func NewOccurrenceService(repo occurrenceRepository, csv *export.CSVExporter, publisher *broker.Publisher, validate *validator.Validate, logger *zap.Logger) *OccurrenceService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrenceService{repo: repo, csv: csv, publisher: publisher, validator: validate, logger: logger}
}

// List returns occurrences and the total count.
func (s *OccurrenceService) List(ctx context.Context, filter models.OccurrenceFilter) ([]models.OccurrenceDetail, int, error) {
	filter.Normalize()
	occurrences, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
	}
	return occurrences, total, nil
}

// Get returns an occurrence detail.
func (s *OccurrenceService) Get(ctx context.Context, id string) (*models.OccurrenceDetail, error) {
	occurrence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}
	return occurrence, nil
}

func occurrenceEnums(req OccurrenceRequest) (models.OccurrenceClassification, models.OccurrenceSeverity, models.OccurrenceStatus, error) {
	classification := models.OccurrenceClassification(req.Classification)
	if !classification.Valid() {
		return "", "", "", appErrors.NewFieldValidation("classification", "is invalid")
	}
	severity := models.OccurrenceSeverity(req.Severity)
	if !severity.Valid() {
		return "", "", "", appErrors.NewFieldValidation("severity", "is invalid")
	}
	status := models.OccurrenceStatus(req.Status)
	if req.Status == "" {
		status = models.OccurrenceOpen
	}
	if !status.Valid() {
		return "", "", "", appErrors.NewFieldValidation("status", "is invalid")
	}
	return classification, severity, status, nil
}

// Create registers a new occurrence.
func (s *OccurrenceService) Create(ctx context.Context, req OccurrenceRequest) (*models.OccurrenceDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	classification, severity, status, err := occurrenceEnums(req)
	if err != nil {
		return nil, err
	}
	occurrence := &models.Occurrence{
		CompanyID:        req.CompanyID,
		SectorID:         req.SectorID,
		EmployeeID:       req.EmployeeID,
		OccurrenceTypeID: req.OccurrenceTypeID,
		OccurredAt:       req.OccurredAt,
		Description:      req.Description,
		ActionsTaken:     req.ActionsTaken,
		Classification:   classification,
		Severity:         severity,
		Status:           status,
	}
	if err := s.repo.Create(ctx, occurrence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create occurrence")
	}
	s.logger.Info("occurrence created", zap.String("id", occurrence.ID), zap.String("severity", string(severity)))
	if err := s.publisher.Publish(ctx, "occurrence.created", map[string]string{"id": occurrence.ID, "classification": string(classification), "severity": string(severity)}); err != nil {
		s.logger.Warn("failed to publish occurrence event", zap.Error(err))
	}
	return s.Get(ctx, occurrence.ID)
}

// Update modifies an existing occurrence.
func (s *OccurrenceService) Update(ctx context.Context, id string, req OccurrenceRequest) (*models.OccurrenceDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	classification, severity, status, err := occurrenceEnums(req)
	if err != nil {
		return nil, err
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}
	occurrence := detail.Occurrence
	occurrence.CompanyID = req.CompanyID
	occurrence.SectorID = req.SectorID
	occurrence.EmployeeID = req.EmployeeID
	occurrence.OccurrenceTypeID = req.OccurrenceTypeID
	occurrence.OccurredAt = req.OccurredAt
	occurrence.Description = req.Description
	occurrence.ActionsTaken = req.ActionsTaken
	occurrence.Classification = classification
	occurrence.Severity = severity
	occurrence.Status = status
	if err := s.repo.Update(ctx, &occurrence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update occurrence")
	}
	return s.Get(ctx, id)
}

// ExportCSV renders the filtered occurrence list as CSV bytes.
func (s *OccurrenceService) ExportCSV(ctx context.Context, filter models.OccurrenceFilter) ([]byte, error) {
	occurrences, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export occurrences")
	}
	headers := []string{"data", "empresa", "setor", "funcionario", "tipo", "classificacao", "severidade", "status", "descricao"}
	rows := make([]map[string]string, 0, len(occurrences))
	for _, o := range occurrences {
		row := map[string]string{
			"data":          o.OccurredAt.Format("2006-01-02"),
			"empresa":       o.CompanyName,
			"classificacao": string(o.Classification),
			"severidade":    string(o.Severity),
			"status":        string(o.Status),
			"descricao":     o.Description,
		}
		if o.SectorName != nil {
			row["setor"] = *o.SectorName
		}
		if o.EmployeeName != nil {
			row["funcionario"] = *o.EmployeeName
		}
		if o.TypeName != nil {
			row["tipo"] = *o.TypeName
		}
		rows = append(rows, row)
	}
	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// Delete removes an occurrence. Deleting an absent occurrence succeeds.
func (s *OccurrenceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete occurrence")
	}
	return nil
}
