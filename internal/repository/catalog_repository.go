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

// CatalogRepository persists the name-only lookup resources. The table name
// always comes from models.Catalogs, never from request input.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List returns catalog entries matching the provided filters.
func (r *CatalogRepository) List(ctx context.Context, def models.CatalogDefinition, filter models.ListQuery) ([]models.CatalogEntry, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		def.Table, where, column, order, filter.PerPage, filter.Offset())

	var entries []models.CatalogEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", def.Table, err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", def.Table, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", def.Table, err)
	}
	return entries, total, nil
}

// FindByID fetches a catalog entry by ID.
func (r *CatalogRepository) FindByID(ctx context.Context, def models.CatalogDefinition, id string) (*models.CatalogEntry, error) {
	query := fmt.Sprintf("SELECT id, name, created_at, updated_at FROM %s WHERE id = $1", def.Table)
	var entry models.CatalogEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ExistsByName checks whether a name is already taken, optionally excluding an ID.
func (r *CatalogRepository) ExistsByName(ctx context.Context, def models.CatalogDefinition, name string, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE LOWER(name) = LOWER($1)", def.Table)
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s name: %w", def.Table, err)
	}
	return true, nil
}

// Create inserts a new catalog entry.
func (r *CatalogRepository) Create(ctx context.Context, def models.CatalogDefinition, entry *models.CatalogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO %s (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`, def.Table)
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create %s: %w", def.Table, err)
	}
	return nil
}

// Update modifies an existing catalog entry.
func (r *CatalogRepository) Update(ctx context.Context, def models.CatalogDefinition, entry *models.CatalogEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET name = :name, updated_at = :updated_at WHERE id = :id`, def.Table)
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update %s: %w", def.Table, err)
	}
	return nil
}

// Delete removes a catalog entry. Missing rows are not an error.
func (r *CatalogRepository) Delete(ctx context.Context, def models.CatalogDefinition, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", def.Table)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s: %w", def.Table, err)
	}
	return nil
}
