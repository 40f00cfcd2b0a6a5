package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

// EventRepository manages persistence for events and their rosters.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching the provided filters.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.EventDetail, int, error) {
	base := "FROM events ev LEFT JOIN event_types et ON et.id = ev.event_type_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.EventTypeID != "" {
		conditions = append(conditions, fmt.Sprintf("ev.event_type_id = $%d", len(args)+1))
		args = append(args, filter.EventTypeID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(ev.name) LIKE $%d OR LOWER(ev.location) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "ev.name",
		"starts_at":  "ev.starts_at",
		"created_at": "ev.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "ev.starts_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT ev.id, ev.name, ev.event_type_id, ev.starts_at, ev.ends_at, ev.location, ev.created_at, ev.updated_at,
        et.name AS type_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var events []models.EventDetail
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID fetches an event detail, roster included.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.EventDetail, error) {
	const query = `SELECT ev.id, ev.name, ev.event_type_id, ev.starts_at, ev.ends_at, ev.location, ev.created_at, ev.updated_at,
        et.name AS type_name
        FROM events ev
        LEFT JOIN event_types et ON et.id = ev.event_type_id
        WHERE ev.id = $1`
	var detail models.EventDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	participants, err := r.ParticipantsByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Participants = participants
	return &detail, nil
}

// ParticipantsByEvent returns the roster of one event.
func (r *EventRepository) ParticipantsByEvent(ctx context.Context, eventID string) ([]models.EventParticipantDetail, error) {
	const query = `SELECT p.id, p.event_id, p.employee_id, p.certificate_number, p.present, p.evaluation,
        e.full_name AS employee_name
        FROM event_participants p
        INNER JOIN employees e ON e.id = p.employee_id
        WHERE p.event_id = $1
        ORDER BY e.full_name ASC`
	participants := []models.EventParticipantDetail{}
	if err := r.db.SelectContext(ctx, &participants, query, eventID); err != nil {
		return nil, fmt.Errorf("event participants: %w", err)
	}
	return participants, nil
}

// FindParticipant fetches one roster row with its employee label.
func (r *EventRepository) FindParticipant(ctx context.Context, eventID, participantID string) (*models.EventParticipantDetail, error) {
	const query = `SELECT p.id, p.event_id, p.employee_id, p.certificate_number, p.present, p.evaluation,
        e.full_name AS employee_name
        FROM event_participants p
        INNER JOIN employees e ON e.id = p.employee_id
        WHERE p.event_id = $1 AND p.id = $2`
	var participant models.EventParticipantDetail
	if err := r.db.GetContext(ctx, &participant, query, eventID, participantID); err != nil {
		return nil, err
	}
	return &participant, nil
}

// Create inserts the event and its roster in one transaction.
func (r *EventRepository) Create(ctx context.Context, event *models.Event, participants []models.EventParticipant) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create event: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO events (id, name, event_type_id, starts_at, ends_at, location, created_at, updated_at)
        VALUES (:id, :name, :event_type_id, :starts_at, :ends_at, :location, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if err := replaceParticipants(ctx, tx, event.ID, participants); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create event: %w", err)
	}
	return nil
}

// Update modifies the event and replaces its roster in one transaction.
func (r *EventRepository) Update(ctx context.Context, event *models.Event, participants []models.EventParticipant) error {
	event.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update event: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE events SET name = :name, event_type_id = :event_type_id, starts_at = :starts_at,
        ends_at = :ends_at, location = :location, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if err := replaceParticipants(ctx, tx, event.ID, participants); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update event: %w", err)
	}
	return nil
}

func replaceParticipants(ctx context.Context, tx *sqlx.Tx, eventID string, participants []models.EventParticipant) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM event_participants WHERE event_id = $1", eventID); err != nil {
		return fmt.Errorf("clear event participants: %w", err)
	}
	for i := range participants {
		p := &participants[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.EventID = eventID
		const query = `INSERT INTO event_participants (id, event_id, employee_id, certificate_number, present, evaluation)
            VALUES (:id, :event_id, :employee_id, :certificate_number, :present, :evaluation)`
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			return fmt.Errorf("insert event participant: %w", err)
		}
	}
	return nil
}

// Delete removes the event and its roster. Missing rows are not an error.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM event_participants WHERE event_id = $1", id); err != nil {
		return fmt.Errorf("clear event participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete event: %w", err)
	}
	return nil
}
