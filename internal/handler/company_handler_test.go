package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
)

type companyRepoStub struct {
	list    []models.CompanyDetail
	total   int
	byID    map[string]*models.CompanyDetail
	deleted []string
}

func (s *companyRepoStub) List(ctx context.Context, filter models.CompanyFilter) ([]models.CompanyDetail, int, error) {
	return s.list, s.total, nil
}

func (s *companyRepoStub) FindByID(ctx context.Context, id string) (*models.CompanyDetail, error) {
	if detail, ok := s.byID[id]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

func (s *companyRepoStub) ExistsByCNPJ(ctx context.Context, cnpj string, excludeID string) (bool, error) {
	return false, nil
}

func (s *companyRepoStub) Create(ctx context.Context, company *models.Company, sectorIDs []string) error {
	company.ID = "c1"
	if s.byID == nil {
		s.byID = map[string]*models.CompanyDetail{}
	}
	s.byID[company.ID] = &models.CompanyDetail{Company: *company}
	return nil
}

func (s *companyRepoStub) Update(ctx context.Context, company *models.Company, sectorIDs []string) error {
	return nil
}

func (s *companyRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func companyRouter(repo *companyRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCompanyHandler(service.NewCompanyService(repo, service.NewValidator(), zap.NewNop()))
	r := gin.New()
	r.GET("/companies", h.List)
	r.POST("/companies", h.Create)
	r.GET("/companies/:id", h.Get)
	r.DELETE("/companies/:id", h.Delete)
	return r
}

func TestCompanyHandlerListEnvelope(t *testing.T) {
	repo := &companyRepoStub{
		list: []models.CompanyDetail{
			{Company: models.Company{ID: "c1", Name: "Acme"}},
			{Company: models.Company{ID: "c2", Name: "Beta"}},
		},
		total: 12,
	}
	r := companyRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/companies?page=2&per_page=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data    []models.CompanyDetail `json:"data"`
		Total   int                    `json:"total"`
		Page    int                    `json:"page"`
		PerPage int                    `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 12, body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 10, body.PerPage)
}

func TestCompanyHandlerGetNotFound(t *testing.T) {
	r := companyRouter(&companyRepoStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/companies/ghost", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error.Code)
}

func TestCompanyHandlerCreateValidation(t *testing.T) {
	r := companyRouter(&companyRepoStub{})

	w := httptest.NewRecorder()
	payload := `{"name":"Acme","cnpj":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/companies", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is invalid", body.Errors["cnpj"])
}

func TestCompanyHandlerCreate(t *testing.T) {
	repo := &companyRepoStub{}
	r := companyRouter(repo)

	w := httptest.NewRecorder()
	payload := `{"name":"Acme","cnpj":"11.444.777/0001-61"}`
	req := httptest.NewRequest(http.MethodPost, "/companies", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created models.CompanyDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "c1", created.ID)
	assert.Equal(t, "11444777000161", created.CNPJ)
}

func TestCompanyHandlerDelete(t *testing.T) {
	repo := &companyRepoStub{}
	r := companyRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/companies/c1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"c1"}, repo.deleted)
}
