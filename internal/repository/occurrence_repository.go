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

// OccurrenceRepository manages persistence for workplace occurrences.
type OccurrenceRepository struct {
	db *sqlx.DB
}

// NewOccurrenceRepository constructs an OccurrenceRepository.
func NewOccurrenceRepository(db *sqlx.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

// List returns occurrences matching the provided filters.
func (r *OccurrenceRepository) List(ctx context.Context, filter models.OccurrenceFilter) ([]models.OccurrenceDetail, int, error) {
	base := `FROM occurrences o
        INNER JOIN companies c ON c.id = o.company_id
        LEFT JOIN sectors s ON s.id = o.sector_id
        LEFT JOIN employees e ON e.id = o.employee_id
        LEFT JOIN occurrence_types ot ON ot.id = o.occurrence_type_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("o.company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Classification != "" {
		conditions = append(conditions, fmt.Sprintf("o.classification = $%d", len(args)+1))
		args = append(args, filter.Classification)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(o.description) LIKE $%d OR LOWER(c.name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"occurred_at": "o.occurred_at",
		"severity":    "o.severity",
		"status":      "o.status",
		"created_at":  "o.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "o.occurred_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT o.id, o.company_id, o.sector_id, o.employee_id, o.occurrence_type_id, o.occurred_at, o.description,
        o.actions_taken, o.classification, o.severity, o.status, o.created_at, o.updated_at,
        c.name AS company_name, s.name AS sector_name, e.full_name AS employee_name, ot.name AS type_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var occurrences []models.OccurrenceDetail
	if err := r.db.SelectContext(ctx, &occurrences, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list occurrences: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count occurrences: %w", err)
	}
	return occurrences, total, nil
}

// ListAll returns every occurrence matching the filters without pagination.
// Used by the CSV export.
func (r *OccurrenceRepository) ListAll(ctx context.Context, filter models.OccurrenceFilter) ([]models.OccurrenceDetail, error) {
	filter.Page = 1
	filter.PerPage = 10000
	occurrences, _, err := r.List(ctx, filter)
	return occurrences, err
}

// FindByID fetches an occurrence detail by ID.
func (r *OccurrenceRepository) FindByID(ctx context.Context, id string) (*models.OccurrenceDetail, error) {
	const query = `SELECT o.id, o.company_id, o.sector_id, o.employee_id, o.occurrence_type_id, o.occurred_at, o.description,
        o.actions_taken, o.classification, o.severity, o.status, o.created_at, o.updated_at,
        c.name AS company_name, s.name AS sector_name, e.full_name AS employee_name, ot.name AS type_name
        FROM occurrences o
        INNER JOIN companies c ON c.id = o.company_id
        LEFT JOIN sectors s ON s.id = o.sector_id
        LEFT JOIN employees e ON e.id = o.employee_id
        LEFT JOIN occurrence_types ot ON ot.id = o.occurrence_type_id
        WHERE o.id = $1`
	var detail models.OccurrenceDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new occurrence record.
func (r *OccurrenceRepository) Create(ctx context.Context, occurrence *models.Occurrence) error {
	if occurrence.ID == "" {
		occurrence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	occurrence.CreatedAt = now
	occurrence.UpdatedAt = now
	const query = `INSERT INTO occurrences (id, company_id, sector_id, employee_id, occurrence_type_id, occurred_at, description, actions_taken, classification, severity, status, created_at, updated_at)
        VALUES (:id, :company_id, :sector_id, :employee_id, :occurrence_type_id, :occurred_at, :description, :actions_taken, :classification, :severity, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, occurrence); err != nil {
		return fmt.Errorf("create occurrence: %w", err)
	}
	return nil
}

// Update modifies an existing occurrence record.
func (r *OccurrenceRepository) Update(ctx context.Context, occurrence *models.Occurrence) error {
	occurrence.UpdatedAt = time.Now().UTC()
	const query = `UPDATE occurrences SET company_id = :company_id, sector_id = :sector_id, employee_id = :employee_id,
        occurrence_type_id = :occurrence_type_id, occurred_at = :occurred_at, description = :description, actions_taken = :actions_taken,
        classification = :classification, severity = :severity, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, occurrence); err != nil {
		return fmt.Errorf("update occurrence: %w", err)
	}
	return nil
}

// Delete removes an occurrence record. Missing rows are not an error.
func (r *OccurrenceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM occurrences WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete occurrence: %w", err)
	}
	return nil
}
