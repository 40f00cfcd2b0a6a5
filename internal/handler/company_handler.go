package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// CompanyHandler exposes company endpoints.
type CompanyHandler struct {
	companies *service.CompanyService
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(companies *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// List godoc
// @Summary List companies
// @Tags Companies
// @Produce json
// @Param search query string false "Search by name, trade name or CNPJ"
// @Param company_group_id query string false "Filter by group"
// @Param company_type_id query string false "Filter by type"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var filter models.CompanyFilter
	filter.ListQuery = parseListQuery(c)
	filter.CompanyGroupID = c.Query("company_group_id")
	filter.CompanyTypeID = c.Query("company_type_id")
	filter.Normalize()

	companies, total, err := h.companies.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, companies, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get company detail
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} models.CompanyDetail
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

// Create godoc
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body service.CompanyRequest true "Company payload"
// @Success 201 {object} models.CompanyDetail
// @Router /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	company, err := h.companies.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, company)
}

// Update godoc
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param payload body service.CompanyRequest true "Company payload"
// @Success 200 {object} models.CompanyDetail
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	company, err := h.companies.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, company)
}

// Delete godoc
// @Summary Delete company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 204
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.companies.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
