package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockCompanyRepo struct {
	companies  map[string]*models.CompanyDetail
	cnpjTaken  bool
	lastFilter models.CompanyFilter
	created    *models.Company
	sectorIDs  []string
	deleted    []string
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: map[string]*models.CompanyDetail{}}
}

func (m *mockCompanyRepo) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error) {
	m.lastFilter = filter
	return nil, 0, nil
}

func (m *mockCompanyRepo) FindByID(ctx context.Context, id string) (*models.CompanyDetail, error) {
	detail, ok := m.companies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return detail, nil
}

func (m *mockCompanyRepo) ExistsByCNPJ(ctx context.Context, cnpj string, excludeID string) (bool, error) {
	return m.cnpjTaken, nil
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *models.Company, sectorIDs []string) error {
	company.ID = "c1"
	m.created = company
	m.sectorIDs = sectorIDs
	m.companies[company.ID] = &models.CompanyDetail{Company: *company}
	return nil
}

func (m *mockCompanyRepo) Update(ctx context.Context, company *models.Company, sectorIDs []string) error {
	m.companies[company.ID] = &models.CompanyDetail{Company: *company}
	m.sectorIDs = sectorIDs
	return nil
}

func (m *mockCompanyRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.companies, id)
	return nil
}

func TestCompanyServiceCreateSanitizesCNPJ(t *testing.T) {
	repo := newMockCompanyRepo()
	svc := NewCompanyService(repo, NewValidator(), zap.NewNop())

	detail, err := svc.Create(context.Background(), CompanyRequest{
		Name:      "Acme",
		CNPJ:      "11.444.777/0001-61",
		SectorIDs: []string{"s1", "s2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "11444777000161", detail.CNPJ)
	assert.Equal(t, []string{"s1", "s2"}, repo.sectorIDs)
}

func TestCompanyServiceCreateInvalidCNPJ(t *testing.T) {
	svc := NewCompanyService(newMockCompanyRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), CompanyRequest{Name: "Acme", CNPJ: "123"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is invalid", v.Fields["cnpj"])
}

func TestCompanyServiceCreateDuplicateCNPJ(t *testing.T) {
	repo := newMockCompanyRepo()
	repo.cnpjTaken = true
	svc := NewCompanyService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), CompanyRequest{Name: "Acme", CNPJ: "11444777000161"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is already registered", v.Fields["cnpj"])
}

func TestCompanyServiceCreateMissingName(t *testing.T) {
	svc := NewCompanyService(newMockCompanyRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), CompanyRequest{CNPJ: "11444777000161"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "name")
}

func TestCompanyServiceListNormalizesFilter(t *testing.T) {
	repo := newMockCompanyRepo()
	svc := NewCompanyService(repo, NewValidator(), zap.NewNop())

	filter := models.CompanyFilter{}
	filter.Page = 0
	filter.PerPage = 33
	_, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, models.DefaultPerPage, repo.lastFilter.PerPage)
}

func TestCompanyServiceGetNotFound(t *testing.T) {
	svc := NewCompanyService(newMockCompanyRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCompanyServiceDeleteAbsent(t *testing.T) {
	repo := newMockCompanyRepo()
	svc := NewCompanyService(repo, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "ghost"))
	assert.Equal(t, []string{"ghost"}, repo.deleted)
}
