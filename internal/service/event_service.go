package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/export"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.EventDetail, error)
	ParticipantsByEvent(ctx context.Context, eventID string) ([]models.EventParticipantDetail, error)
	FindParticipant(ctx context.Context, eventID, participantID string) (*models.EventParticipantDetail, error)
	Create(ctx context.Context, event *models.Event, participants []models.EventParticipant) error
	Update(ctx context.Context, event *models.Event, participants []models.EventParticipant) error
	Delete(ctx context.Context, id string) error
}

// ParticipantRequest is one roster row in the event payload. An empty
// certificate number gets a generated one.
type ParticipantRequest struct {
	ID                string `json:"id"`
	EmployeeID        string `json:"employee_id" validate:"required"`
	CertificateNumber string `json:"certificate_number" validate:"max=20"`
	Present           bool   `json:"present"`
	Evaluation        string `json:"evaluation"`
}

// EventRequest holds the payload for creating and updating events.
type EventRequest struct {
	Name         string               `json:"name" validate:"required,max=160"`
	EventTypeID  *string              `json:"event_type_id"`
	StartsAt     time.Time            `json:"starts_at" validate:"required"`
	EndsAt       time.Time            `json:"ends_at" validate:"required"`
	Location     string               `json:"location" validate:"max=160"`
	Participants []ParticipantRequest `json:"participants" validate:"dive"`
}

// EventService handles event use-cases, certificates included.
type EventService struct {
	repo      eventRepository
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the event service.
func NewEventService(repo eventRepository, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *EventService {
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, pdf: pdf, validator: validate, logger: logger}
}

// List returns events and the total count.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error) {
	filter.Normalize()
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, total, nil
}

// Get returns an event detail, roster included.
func (s *EventService) Get(ctx context.Context, id string) (*models.EventDetail, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// certificateNumber derives a stable display code for a roster row.
func certificateNumber(eventID, employeeID string) string {
	sum := sha256.Sum256([]byte(eventID + "|" + employeeID))
	return strings.ToUpper(hex.EncodeToString(sum[:5]))
}

// buildRoster fills blank certificate numbers and enforces uniqueness within
// the payload. The roster is replaced whole on every write, so the payload is
// the complete participant set.
func (s *EventService) buildRoster(eventID string, rows []ParticipantRequest) ([]models.EventParticipant, error) {
	participants := make([]models.EventParticipant, 0, len(rows))
	numbers := map[string]bool{}
	employees := map[string]bool{}
	for i, row := range rows {
		if employees[row.EmployeeID] {
			field := fmt.Sprintf("participants.%d.employee_id", i)
			return nil, appErrors.NewFieldValidation(field, "is duplicated")
		}
		employees[row.EmployeeID] = true

		number := strings.TrimSpace(row.CertificateNumber)
		if number == "" {
			number = certificateNumber(eventID, row.EmployeeID)
		}
		if numbers[number] {
			field := fmt.Sprintf("participants.%d.certificate_number", i)
			return nil, appErrors.NewFieldValidation(field, "is duplicated")
		}
		numbers[number] = true

		participants = append(participants, models.EventParticipant{
			ID:                row.ID,
			EmployeeID:        row.EmployeeID,
			CertificateNumber: number,
			Present:           row.Present,
			Evaluation:        row.Evaluation,
		})
	}
	return participants, nil
}

func checkEventDates(req EventRequest) error {
	if !req.EndsAt.After(req.StartsAt) {
		return appErrors.NewFieldValidation("ends_at", "must be after starts_at")
	}
	return nil
}

// Create registers a new event with its roster.
func (s *EventService) Create(ctx context.Context, req EventRequest) (*models.EventDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if err := checkEventDates(req); err != nil {
		return nil, err
	}
	event := &models.Event{
		Name:        req.Name,
		EventTypeID: req.EventTypeID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
	}
	// The event id seeds generated certificate numbers, so mint it up front.
	event.ID = uuid.NewString()
	participants, err := s.buildRoster(event.ID, req.Participants)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, event, participants); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("event created", zap.String("id", event.ID))
	return s.Get(ctx, event.ID)
}

// Update modifies an existing event and replaces its roster.
func (s *EventService) Update(ctx context.Context, id string, req EventRequest) (*models.EventDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	if err := checkEventDates(req); err != nil {
		return nil, err
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	participants, err := s.buildRoster(id, req.Participants)
	if err != nil {
		return nil, err
	}
	event := detail.Event
	event.Name = req.Name
	event.EventTypeID = req.EventTypeID
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Location = req.Location
	if err := s.repo.Update(ctx, &event, participants); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return s.Get(ctx, id)
}

// Certificate renders the participant certificate as PDF bytes.
func (s *EventService) Certificate(ctx context.Context, eventID, participantID string) ([]byte, string, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, "", err
	}
	participant, err := s.repo.FindParticipant(ctx, eventID, participantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant")
	}
	period := fmt.Sprintf("realizado de %s a %s", event.StartsAt.Format("02/01/2006"), event.EndsAt.Format("02/01/2006"))
	cert := export.Certificate{
		Number:       participant.CertificateNumber,
		EventName:    event.Name,
		Participant:  participant.EmployeeName,
		Location:     event.Location,
		PeriodLabel:  period,
		IssuedAtText: "Emitido em " + time.Now().Format("02/01/2006"),
	}
	data, err := s.pdf.RenderCertificate(cert)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	filename := fmt.Sprintf("certificado-%s.pdf", participant.CertificateNumber)
	return data, filename, nil
}

// Delete removes an event. Deleting an absent event succeeds.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}
