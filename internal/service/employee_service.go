package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/pkg/brdoc"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.EmployeeDetail, error)
	ExistsByCPF(ctx context.Context, cpf string, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee, assignments []models.Assignment) error
	Update(ctx context.Context, employee *models.Employee, assignments []models.Assignment) error
	Delete(ctx context.Context, id string) error
}

// AssignmentRequest is one placement row in the employee payload.
type AssignmentRequest struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id" validate:"required"`
	SectorID   string     `json:"sector_id" validate:"required"`
	JobTitleID string     `json:"job_title_id" validate:"required"`
	StartedAt  time.Time  `json:"started_at" validate:"required"`
	EndedAt    *time.Time `json:"ended_at"`
}

// EmployeeRequest holds the payload for creating and updating employees.
type EmployeeRequest struct {
	FullName     string              `json:"full_name" validate:"required,max=160"`
	CPF          string              `json:"cpf" validate:"required"`
	RG           string              `json:"rg" validate:"max=20"`
	BirthDate    time.Time           `json:"birth_date" validate:"required"`
	Phone        string              `json:"phone" validate:"max=20"`
	Email        string              `json:"email" validate:"omitempty,email"`
	CNHNumber    string              `json:"cnh_number" validate:"max=20"`
	CNHCategory  string              `json:"cnh_category" validate:"max=5"`
	CNHExpiresAt *time.Time          `json:"cnh_expires_at"`
	Assignments  []AssignmentRequest `json:"assignments" validate:"dive"`
}

// EmployeeService handles employee use-cases.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, validator: validate, logger: logger}
}

// List returns employees and the total count.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	filter.Normalize()
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, total, nil
}

// Get returns an employee detail, assignments included.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.EmployeeDetail, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// checkAssignments enforces the date order on each row and rejects duplicate
// (sector, job title, start date) rows.
func checkAssignments(rows []AssignmentRequest) ([]models.Assignment, error) {
	assignments := make([]models.Assignment, 0, len(rows))
	seen := map[string]bool{}
	for i, row := range rows {
		if row.EndedAt != nil && row.EndedAt.Before(row.StartedAt) {
			field := fmt.Sprintf("assignments.%d.ended_at", i)
			return nil, appErrors.NewFieldValidation(field, "must not be before started_at")
		}
		key := row.SectorID + "|" + row.JobTitleID + "|" + row.StartedAt.UTC().Format(time.RFC3339)
		if seen[key] {
			field := fmt.Sprintf("assignments.%d.sector_id", i)
			return nil, appErrors.NewFieldValidation(field, "duplicates another assignment")
		}
		seen[key] = true
		assignments = append(assignments, models.Assignment{
			ID:         row.ID,
			CompanyID:  row.CompanyID,
			SectorID:   row.SectorID,
			JobTitleID: row.JobTitleID,
			StartedAt:  row.StartedAt,
			EndedAt:    row.EndedAt,
		})
	}
	return assignments, nil
}

func (s *EmployeeService) checkCPF(ctx context.Context, cpf, excludeID string) (string, error) {
	sanitized := brdoc.Sanitize(cpf)
	if !brdoc.ValidCPF(sanitized) {
		return "", appErrors.NewFieldValidation("cpf", "is invalid")
	}
	exists, err := s.repo.ExistsByCPF(ctx, sanitized, excludeID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate cpf")
	}
	if exists {
		return "", appErrors.NewFieldValidation("cpf", "is already registered")
	}
	return sanitized, nil
}

// Create registers a new employee with the assignment history.
func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*models.EmployeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	cpf, err := s.checkCPF(ctx, req.CPF, "")
	if err != nil {
		return nil, err
	}
	assignments, err := checkAssignments(req.Assignments)
	if err != nil {
		return nil, err
	}
	employee := &models.Employee{
		FullName:     req.FullName,
		CPF:          cpf,
		RG:           req.RG,
		BirthDate:    req.BirthDate,
		Phone:        req.Phone,
		Email:        req.Email,
		CNHNumber:    req.CNHNumber,
		CNHCategory:  req.CNHCategory,
		CNHExpiresAt: req.CNHExpiresAt,
	}
	if err := s.repo.Create(ctx, employee, assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	s.logger.Info("employee created", zap.String("id", employee.ID))
	return s.Get(ctx, employee.ID)
}

// Update modifies an existing employee and replaces the assignment history.
func (s *EmployeeService) Update(ctx context.Context, id string, req EmployeeRequest) (*models.EmployeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	cpf, err := s.checkCPF(ctx, req.CPF, id)
	if err != nil {
		return nil, err
	}
	assignments, err := checkAssignments(req.Assignments)
	if err != nil {
		return nil, err
	}
	employee := detail.Employee
	employee.FullName = req.FullName
	employee.CPF = cpf
	employee.RG = req.RG
	employee.BirthDate = req.BirthDate
	employee.Phone = req.Phone
	employee.Email = req.Email
	employee.CNHNumber = req.CNHNumber
	employee.CNHCategory = req.CNHCategory
	employee.CNHExpiresAt = req.CNHExpiresAt
	if err := s.repo.Update(ctx, &employee, assignments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return s.Get(ctx, id)
}

// Delete removes an employee. Deleting an absent employee succeeds.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	return nil
}
