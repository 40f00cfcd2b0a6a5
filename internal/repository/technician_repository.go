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

// TechnicianRepository manages persistence for safety technicians.
type TechnicianRepository struct {
	db *sqlx.DB
}

// NewTechnicianRepository constructs a TechnicianRepository.
func NewTechnicianRepository(db *sqlx.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// List returns technicians matching the provided filters.
func (r *TechnicianRepository) List(ctx context.Context, filter models.ListQuery) ([]models.Technician, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(registry_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":            "name",
		"registry_number": "registry_number",
		"created_at":      "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, name, registry_number, email, created_at, updated_at
        FROM technicians WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, where, column, order, filter.PerPage, filter.Offset())

	var technicians []models.Technician
	if err := r.db.SelectContext(ctx, &technicians, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list technicians: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM technicians WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count technicians: %w", err)
	}
	return technicians, total, nil
}

// FindByID fetches a technician by ID.
func (r *TechnicianRepository) FindByID(ctx context.Context, id string) (*models.Technician, error) {
	const query = `SELECT id, name, registry_number, email, created_at, updated_at FROM technicians WHERE id = $1`
	var technician models.Technician
	if err := r.db.GetContext(ctx, &technician, query, id); err != nil {
		return nil, err
	}
	return &technician, nil
}

// ExistsByRegistryNumber checks if a technician with the given registry exists, optionally excluding an ID.
func (r *TechnicianRepository) ExistsByRegistryNumber(ctx context.Context, registryNumber string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM technicians WHERE LOWER(registry_number) = LOWER($1)"
	args := []interface{}{registryNumber}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registry number: %w", err)
	}
	return true, nil
}

// Create inserts a new technician record.
func (r *TechnicianRepository) Create(ctx context.Context, technician *models.Technician) error {
	if technician.ID == "" {
		technician.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	technician.CreatedAt = now
	technician.UpdatedAt = now
	const query = `INSERT INTO technicians (id, name, registry_number, email, created_at, updated_at)
        VALUES (:id, :name, :registry_number, :email, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, technician); err != nil {
		return fmt.Errorf("create technician: %w", err)
	}
	return nil
}

// Update modifies an existing technician record.
func (r *TechnicianRepository) Update(ctx context.Context, technician *models.Technician) error {
	technician.UpdatedAt = time.Now().UTC()
	const query = `UPDATE technicians SET name = :name, registry_number = :registry_number, email = :email, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, technician); err != nil {
		return fmt.Errorf("update technician: %w", err)
	}
	return nil
}

// Delete removes a technician record. Missing rows are not an error.
func (r *TechnicianRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM technicians WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete technician: %w", err)
	}
	return nil
}
