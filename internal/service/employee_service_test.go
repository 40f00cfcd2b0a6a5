package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockEmployeeRepo struct {
	employees       map[string]*models.EmployeeDetail
	cpfTaken        bool
	lastAssignments []models.Assignment
	deleted         []string
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: map[string]*models.EmployeeDetail{}}
}

func (m *mockEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	return nil, 0, nil
}

func (m *mockEmployeeRepo) FindByID(ctx context.Context, id string) (*models.EmployeeDetail, error) {
	detail, ok := m.employees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *mockEmployeeRepo) ExistsByCPF(ctx context.Context, cpf string, excludeID string) (bool, error) {
	return m.cpfTaken, nil
}

func (m *mockEmployeeRepo) Create(ctx context.Context, employee *models.Employee, assignments []models.Assignment) error {
	employee.ID = "e1"
	m.lastAssignments = assignments
	m.employees[employee.ID] = &models.EmployeeDetail{Employee: *employee}
	return nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, employee *models.Employee, assignments []models.Assignment) error {
	m.lastAssignments = assignments
	m.employees[employee.ID] = &models.EmployeeDetail{Employee: *employee}
	return nil
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.employees, id)
	return nil
}

func employeeRequest(assignments ...AssignmentRequest) EmployeeRequest {
	return EmployeeRequest{
		FullName:    "Maria Silva",
		CPF:         "529.982.247-25",
		BirthDate:   time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
		Assignments: assignments,
	}
}

func assignment(startedAt time.Time, endedAt *time.Time) AssignmentRequest {
	return AssignmentRequest{
		CompanyID:  "c1",
		SectorID:   "s1",
		JobTitleID: "j1",
		StartedAt:  startedAt,
		EndedAt:    endedAt,
	}
}

func TestEmployeeServiceCreateSanitizesCPF(t *testing.T) {
	repo := newMockEmployeeRepo()
	svc := NewEmployeeService(repo, NewValidator(), zap.NewNop())

	detail, err := svc.Create(context.Background(), employeeRequest())
	require.NoError(t, err)
	assert.Equal(t, "52998224725", detail.CPF)
}

func TestEmployeeServiceCreateInvalidCPF(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), NewValidator(), zap.NewNop())

	req := employeeRequest()
	req.CPF = "529.982.247-26"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is invalid", v.Fields["cpf"])
}

func TestEmployeeServiceCreateDuplicateCPF(t *testing.T) {
	repo := newMockEmployeeRepo()
	repo.cpfTaken = true
	svc := NewEmployeeService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), employeeRequest())
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is already registered", v.Fields["cpf"])
}

func TestEmployeeServiceCreateEndBeforeStart(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), NewValidator(), zap.NewNop())

	started := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ended := started.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), employeeRequest(assignment(started, &ended)))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "assignments.0.ended_at")
}

func TestEmployeeServiceCreateAllowsSameDayAssignment(t *testing.T) {
	repo := newMockEmployeeRepo()
	svc := NewEmployeeService(repo, NewValidator(), zap.NewNop())

	started := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ended := started
	_, err := svc.Create(context.Background(), employeeRequest(assignment(started, &ended)))
	require.NoError(t, err)
	require.Len(t, repo.lastAssignments, 1)
}

func TestEmployeeServiceCreateDuplicateAssignmentRows(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), NewValidator(), zap.NewNop())

	started := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	ended := started.AddDate(0, 6, 0)
	_, err := svc.Create(context.Background(), employeeRequest(
		assignment(started, &ended),
		assignment(started, &ended),
	))
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "duplicates another assignment", v.Fields["assignments.1.sector_id"])
}

func TestEmployeeServiceCreateDistinctStartDatesPass(t *testing.T) {
	repo := newMockEmployeeRepo()
	svc := NewEmployeeService(repo, NewValidator(), zap.NewNop())

	first := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	firstEnd := first.AddDate(1, 0, 0)
	second := firstEnd.AddDate(0, 0, 1)
	_, err := svc.Create(context.Background(), employeeRequest(
		assignment(first, &firstEnd),
		assignment(second, nil),
	))
	require.NoError(t, err)
	require.Len(t, repo.lastAssignments, 2)
}

func TestEmployeeServiceGetNotFound(t *testing.T) {
	svc := NewEmployeeService(newMockEmployeeRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceDeleteAbsent(t *testing.T) {
	repo := newMockEmployeeRepo()
	svc := NewEmployeeService(repo, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "ghost"))
	assert.Equal(t, []string{"ghost"}, repo.deleted)
}
