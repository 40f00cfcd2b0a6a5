package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

// EpiRepository manages persistence for protective equipment records.
type EpiRepository struct {
	db *sqlx.DB
}

// NewEpiRepository constructs an EpiRepository.
func NewEpiRepository(db *sqlx.DB) *EpiRepository {
	return &EpiRepository{db: db}
}

// List returns EPIs matching the provided filters.
func (r *EpiRepository) List(ctx context.Context, filter models.EpiFilter) ([]models.EpiDetail, int, error) {
	base := "FROM epis p LEFT JOIN brands b ON b.id = p.brand_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.BrandID != "" {
		conditions = append(conditions, fmt.Sprintf("p.brand_id = $%d", len(args)+1))
		args = append(args, filter.BrandID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.ca_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "p.name",
		"ca_number":  "p.ca_number",
		"created_at": "p.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "p.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT p.id, p.name, p.ca_number, p.brand_id, p.validity_days, p.description, p.created_at, p.updated_at,
        b.name AS brand_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var epis []models.EpiDetail
	if err := r.db.SelectContext(ctx, &epis, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list epis: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count epis: %w", err)
	}
	return epis, total, nil
}

// FindByID fetches an EPI detail by ID.
func (r *EpiRepository) FindByID(ctx context.Context, id string) (*models.EpiDetail, error) {
	const query = `SELECT p.id, p.name, p.ca_number, p.brand_id, p.validity_days, p.description, p.created_at, p.updated_at,
        b.name AS brand_name
        FROM epis p
        LEFT JOIN brands b ON b.id = p.brand_id
        WHERE p.id = $1`
	var detail models.EpiDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByCANumber checks if an EPI with the given CA number exists, optionally excluding an ID.
func (r *EpiRepository) ExistsByCANumber(ctx context.Context, caNumber string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM epis WHERE LOWER(ca_number) = LOWER($1)"
	args := []interface{}{caNumber}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check ca number: %w", err)
	}
	return true, nil
}

// Create inserts a new EPI record.
func (r *EpiRepository) Create(ctx context.Context, epi *models.Epi) error {
	if epi.ID == "" {
		epi.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	epi.CreatedAt = now
	epi.UpdatedAt = now
	const query = `INSERT INTO epis (id, name, ca_number, brand_id, validity_days, description, created_at, updated_at)
        VALUES (:id, :name, :ca_number, :brand_id, :validity_days, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, epi); err != nil {
		return fmt.Errorf("create epi: %w", err)
	}
	return nil
}

// Update modifies an existing EPI record.
func (r *EpiRepository) Update(ctx context.Context, epi *models.Epi) error {
	epi.UpdatedAt = time.Now().UTC()
	const query = `UPDATE epis SET name = :name, ca_number = :ca_number, brand_id = :brand_id,
        validity_days = :validity_days, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, epi); err != nil {
		return fmt.Errorf("update epi: %w", err)
	}
	return nil
}

// Delete removes an EPI record. Missing rows are not an error.
func (r *EpiRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM epis WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete epi: %w", err)
	}
	return nil
}
