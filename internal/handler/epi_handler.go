package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// EpiHandler exposes protective equipment endpoints.
type EpiHandler struct {
	epis *service.EpiService
}

// NewEpiHandler constructs EpiHandler.
func NewEpiHandler(epis *service.EpiService) *EpiHandler {
	return &EpiHandler{epis: epis}
}

// List godoc
// @Summary List protective equipment
// @Tags Epis
// @Produce json
// @Param search query string false "Search by name or CA number"
// @Param brand_id query string false "Filter by brand"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /epis [get]
func (h *EpiHandler) List(c *gin.Context) {
	var filter models.EpiFilter
	filter.ListQuery = parseListQuery(c)
	filter.BrandID = c.Query("brand_id")
	filter.Normalize()

	epis, total, err := h.epis.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, epis, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get protective equipment detail
// @Tags Epis
// @Produce json
// @Param id path string true "EPI ID"
// @Success 200 {object} models.EpiDetail
// @Router /epis/{id} [get]
func (h *EpiHandler) Get(c *gin.Context) {
	epi, err := h.epis.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, epi)
}

// Create godoc
// @Summary Create protective equipment
// @Tags Epis
// @Accept json
// @Produce json
// @Param payload body service.EpiRequest true "EPI payload"
// @Success 201 {object} models.EpiDetail
// @Router /epis [post]
func (h *EpiHandler) Create(c *gin.Context) {
	var req service.EpiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	epi, err := h.epis.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, epi)
}

// Update godoc
// @Summary Update protective equipment
// @Tags Epis
// @Accept json
// @Produce json
// @Param id path string true "EPI ID"
// @Param payload body service.EpiRequest true "EPI payload"
// @Success 200 {object} models.EpiDetail
// @Router /epis/{id} [put]
func (h *EpiHandler) Update(c *gin.Context) {
	var req service.EpiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	epi, err := h.epis.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, epi)
}

// Delete godoc
// @Summary Delete protective equipment
// @Tags Epis
// @Produce json
// @Param id path string true "EPI ID"
// @Success 204
// @Router /epis/{id} [delete]
func (h *EpiHandler) Delete(c *gin.Context) {
	if err := h.epis.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
