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

// EmployeeRepository manages persistence for employees and their assignments.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns employees matching the provided filters.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	base := "FROM employees e"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CompanyID != "" {
		base += " INNER JOIN assignments a ON a.employee_id = e.id AND a.ended_at IS NULL"
		conditions = append(conditions, fmt.Sprintf("a.company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.full_name) LIKE $%d OR e.cpf LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":  "e.full_name",
		"birth_date": "e.birth_date",
		"created_at": "e.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "e.full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT DISTINCT e.id, e.full_name, e.cpf, e.rg, e.birth_date, e.phone, e.email, e.cnh_number, e.cnh_category, e.cnh_expires_at, e.created_at, e.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT e.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// FindByID fetches an employee detail, assignments included.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.EmployeeDetail, error) {
	const query = `SELECT id, full_name, cpf, rg, birth_date, phone, email, cnh_number, cnh_category, cnh_expires_at, created_at, updated_at
        FROM employees WHERE id = $1`
	var detail models.EmployeeDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	assignments, err := r.AssignmentsByEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Assignments = assignments
	return &detail, nil
}

// AssignmentsByEmployee returns the assignment history for an employee.
func (r *EmployeeRepository) AssignmentsByEmployee(ctx context.Context, employeeID string) ([]models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.employee_id, a.company_id, a.sector_id, a.job_title_id, a.started_at, a.ended_at, a.created_at,
        c.name AS company_name, s.name AS sector_name, j.name AS job_title_name
        FROM assignments a
        INNER JOIN companies c ON c.id = a.company_id
        INNER JOIN sectors s ON s.id = a.sector_id
        INNER JOIN job_titles j ON j.id = a.job_title_id
        WHERE a.employee_id = $1
        ORDER BY a.started_at DESC`
	assignments := []models.AssignmentDetail{}
	if err := r.db.SelectContext(ctx, &assignments, query, employeeID); err != nil {
		return nil, fmt.Errorf("employee assignments: %w", err)
	}
	return assignments, nil
}

// ExistsByCPF checks if an employee with the given CPF exists, optionally excluding an ID.
func (r *EmployeeRepository) ExistsByCPF(ctx context.Context, cpf string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM employees WHERE cpf = $1"
	args := []interface{}{cpf}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check cpf: %w", err)
	}
	return true, nil
}

// Create inserts the employee and its assignments in one transaction.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee, assignments []models.Assignment) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create employee: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO employees (id, full_name, cpf, rg, birth_date, phone, email, cnh_number, cnh_category, cnh_expires_at, created_at, updated_at)
        VALUES (:id, :full_name, :cpf, :rg, :birth_date, :phone, :email, :cnh_number, :cnh_category, :cnh_expires_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	if err := replaceAssignments(ctx, tx, employee.ID, assignments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create employee: %w", err)
	}
	return nil
}

// Update modifies the employee and replaces its assignments in one transaction.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee, assignments []models.Assignment) error {
	employee.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update employee: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE employees SET full_name = :full_name, cpf = :cpf, rg = :rg, birth_date = :birth_date, phone = :phone, email = :email,
        cnh_number = :cnh_number, cnh_category = :cnh_category, cnh_expires_at = :cnh_expires_at, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if err := replaceAssignments(ctx, tx, employee.ID, assignments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update employee: %w", err)
	}
	return nil
}

func replaceAssignments(ctx context.Context, tx *sqlx.Tx, employeeID string, assignments []models.Assignment) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM assignments WHERE employee_id = $1", employeeID); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	now := time.Now().UTC()
	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.EmployeeID = employeeID
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		const query = `INSERT INTO assignments (id, employee_id, company_id, sector_id, job_title_id, started_at, ended_at, created_at)
            VALUES (:id, :employee_id, :company_id, :sector_id, :job_title_id, :started_at, :ended_at, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

// Delete removes the employee and its assignments. Missing rows are not an error.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete employee: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assignments WHERE employee_id = $1", id); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete employee: %w", err)
	}
	return nil
}
