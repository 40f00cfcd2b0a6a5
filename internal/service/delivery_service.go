package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/export"
)

type deliveryRepository interface {
	List(ctx context.Context, filter models.EpiDeliveryFilter) ([]models.EpiDeliveryDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EpiDeliveryDetail, error)
	Create(ctx context.Context, delivery *models.EpiDelivery, items []models.EpiDeliveryItem) error
	Update(ctx context.Context, delivery *models.EpiDelivery, items []models.EpiDeliveryItem) error
	Delete(ctx context.Context, id string) error
}

// DeliveryItemRequest is one equipment line in the delivery payload.
type DeliveryItemRequest struct {
	EpiID    string `json:"epi_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Notes    string `json:"notes"`
}

// DeliveryRequest holds the payload for creating and updating deliveries.
type DeliveryRequest struct {
	EmployeeID     string                `json:"employee_id" validate:"required"`
	TechnicianID   string                `json:"technician_id" validate:"required"`
	DocumentNumber string                `json:"document_number" validate:"required,max=40"`
	DeliveredAt    time.Time             `json:"delivered_at" validate:"required"`
	Items          []DeliveryItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DeliveryService handles PPE delivery use-cases, receipt rendering included.
type DeliveryService struct {
	repo      deliveryRepository
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDeliveryService constructs the delivery service.
func NewDeliveryService(repo deliveryRepository, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *DeliveryService {
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{repo: repo, pdf: pdf, validator: validate, logger: logger}
}

// List returns deliveries and the total count.
func (s *DeliveryService) List(ctx context.Context, filter models.EpiDeliveryFilter) ([]models.EpiDeliveryDetail, int, error) {
	filter.Normalize()
	deliveries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list deliveries")
	}
	return deliveries, total, nil
}

// Get returns a delivery detail, items included.
func (s *DeliveryService) Get(ctx context.Context, id string) (*models.EpiDeliveryDetail, error) {
	delivery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "delivery not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load delivery")
	}
	return delivery, nil
}

func deliveryItems(rows []DeliveryItemRequest) ([]models.EpiDeliveryItem, error) {
	items := make([]models.EpiDeliveryItem, 0, len(rows))
	seen := map[string]bool{}
	for i, row := range rows {
		if seen[row.EpiID] {
			field := fmt.Sprintf("items.%d.epi_id", i)
			return nil, appErrors.NewFieldValidation(field, "is duplicated")
		}
		seen[row.EpiID] = true
		items = append(items, models.EpiDeliveryItem{
			EpiID:    row.EpiID,
			Quantity: row.Quantity,
			Notes:    row.Notes,
		})
	}
	return items, nil
}

// Create registers a new delivery with its items.
func (s *DeliveryService) Create(ctx context.Context, req DeliveryRequest) (*models.EpiDeliveryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	items, err := deliveryItems(req.Items)
	if err != nil {
		return nil, err
	}
	delivery := &models.EpiDelivery{
		EmployeeID:     req.EmployeeID,
		TechnicianID:   req.TechnicianID,
		DocumentNumber: req.DocumentNumber,
		DeliveredAt:    req.DeliveredAt,
	}
	if err := s.repo.Create(ctx, delivery, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create delivery")
	}
	s.logger.Info("delivery created", zap.String("id", delivery.ID))
	return s.Get(ctx, delivery.ID)
}

// Update modifies an existing delivery and replaces its items.
func (s *DeliveryService) Update(ctx context.Context, id string, req DeliveryRequest) (*models.EpiDeliveryDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "delivery not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load delivery")
	}
	items, err := deliveryItems(req.Items)
	if err != nil {
		return nil, err
	}
	delivery := detail.EpiDelivery
	delivery.EmployeeID = req.EmployeeID
	delivery.TechnicianID = req.TechnicianID
	delivery.DocumentNumber = req.DocumentNumber
	delivery.DeliveredAt = req.DeliveredAt
	if err := s.repo.Update(ctx, &delivery, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update delivery")
	}
	return s.Get(ctx, id)
}

// Receipt renders the signed delivery receipt as PDF bytes.
func (s *DeliveryService) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rows := make([]map[string]string, 0, len(detail.Items))
	for _, item := range detail.Items {
		rows = append(rows, map[string]string{
			"EPI":        item.EpiName,
			"CA":         item.CANumber,
			"Quantidade": strconv.Itoa(item.Quantity),
			"Observação": item.Notes,
		})
	}
	receipt := export.Receipt{
		DocumentNumber: detail.DocumentNumber,
		Employee:       detail.EmployeeName,
		Technician:     detail.TechnicianName,
		DeliveredAt:    detail.DeliveredAt.Format("02/01/2006"),
		Items: export.Dataset{
			Headers: []string{"EPI", "CA", "Quantidade", "Observação"},
			Rows:    rows,
		},
	}
	data, err := s.pdf.RenderReceipt(receipt)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	filename := fmt.Sprintf("recibo-%s.pdf", detail.DocumentNumber)
	return data, filename, nil
}

// Delete removes a delivery. Deleting an absent delivery succeeds.
func (s *DeliveryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete delivery")
	}
	return nil
}
