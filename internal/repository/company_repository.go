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

// CompanyRepository manages persistence for companies and their sector links.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// List returns companies matching the provided filters.
func (r *CompanyRepository) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error) {
	base := "FROM companies c LEFT JOIN company_groups g ON g.id = c.company_group_id LEFT JOIN company_types t ON t.id = c.company_type_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CompanyGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("c.company_group_id = $%d", len(args)+1))
		args = append(args, filter.CompanyGroupID)
	}
	if filter.CompanyTypeID != "" {
		conditions = append(conditions, fmt.Sprintf("c.company_type_id = $%d", len(args)+1))
		args = append(args, filter.CompanyTypeID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.name) LIKE $%d OR LOWER(c.trade_name) LIKE $%d OR c.cnpj LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "c.name",
		"trade_name": "c.trade_name",
		"city":       "c.city",
		"created_at": "c.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "c.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT c.id, c.name, c.trade_name, c.cnpj, c.address, c.city, c.state, c.company_group_id, c.company_type_id, c.created_at, c.updated_at,
        g.name AS group_name, t.name AS type_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var companies []models.CompanyDetail
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}
	return companies, total, nil
}

// FindByID fetches a company detail, sectors included.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.CompanyDetail, error) {
	query := `SELECT c.id, c.name, c.trade_name, c.cnpj, c.address, c.city, c.state, c.company_group_id, c.company_type_id, c.created_at, c.updated_at,
        g.name AS group_name, t.name AS type_name
        FROM companies c
        LEFT JOIN company_groups g ON g.id = c.company_group_id
        LEFT JOIN company_types t ON t.id = c.company_type_id
        WHERE c.id = $1`
	var detail models.CompanyDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	sectors, err := r.SectorsByCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Sectors = sectors
	return &detail, nil
}

// SectorsByCompany returns the sectors linked to a company.
func (r *CompanyRepository) SectorsByCompany(ctx context.Context, companyID string) ([]models.CatalogEntry, error) {
	query := `SELECT s.id, s.name, s.created_at, s.updated_at
        FROM sectors s
        INNER JOIN company_sectors cs ON cs.sector_id = s.id
        WHERE cs.company_id = $1
        ORDER BY s.name ASC`
	sectors := []models.CatalogEntry{}
	if err := r.db.SelectContext(ctx, &sectors, query, companyID); err != nil {
		return nil, fmt.Errorf("company sectors: %w", err)
	}
	return sectors, nil
}

// ExistsByCNPJ checks if a company with the given CNPJ exists, optionally excluding an ID.
func (r *CompanyRepository) ExistsByCNPJ(ctx context.Context, cnpj string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM companies WHERE cnpj = $1"
	args := []interface{}{cnpj}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check cnpj: %w", err)
	}
	return true, nil
}

// Create inserts the company and its sector links in one transaction.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company, sectorIDs []string) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create company: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO companies (id, name, trade_name, cnpj, address, city, state, company_group_id, company_type_id, created_at, updated_at)
        VALUES (:id, :name, :trade_name, :cnpj, :address, :city, :state, :company_group_id, :company_type_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	if err := replaceCompanySectors(ctx, tx, company.ID, sectorIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create company: %w", err)
	}
	return nil
}

// Update modifies the company and replaces its sector links in one transaction.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company, sectorIDs []string) error {
	company.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update company: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE companies SET name = :name, trade_name = :trade_name, cnpj = :cnpj, address = :address, city = :city, state = :state,
        company_group_id = :company_group_id, company_type_id = :company_type_id, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if err := replaceCompanySectors(ctx, tx, company.ID, sectorIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update company: %w", err)
	}
	return nil
}

func replaceCompanySectors(ctx context.Context, tx *sqlx.Tx, companyID string, sectorIDs []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM company_sectors WHERE company_id = $1", companyID); err != nil {
		return fmt.Errorf("clear company sectors: %w", err)
	}
	for _, sectorID := range sectorIDs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO company_sectors (company_id, sector_id) VALUES ($1, $2)", companyID, sectorID); err != nil {
			return fmt.Errorf("link company sector: %w", err)
		}
	}
	return nil
}

// Delete removes the company and its sector links. Missing rows are not an error.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete company: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM company_sectors WHERE company_id = $1", id); err != nil {
		return fmt.Errorf("clear company sectors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM companies WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete company: %w", err)
	}
	return nil
}
