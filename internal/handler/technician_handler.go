package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// TechnicianHandler exposes safety technician endpoints.
type TechnicianHandler struct {
	technicians *service.TechnicianService
}

// NewTechnicianHandler constructs TechnicianHandler.
func NewTechnicianHandler(technicians *service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{technicians: technicians}
}

// List godoc
// @Summary List technicians
// @Tags Technicians
// @Produce json
// @Param search query string false "Search by name or registry number"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /technicians [get]
func (h *TechnicianHandler) List(c *gin.Context) {
	filter := parseListQuery(c)
	filter.Normalize()

	technicians, total, err := h.technicians.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, technicians, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get technician
// @Tags Technicians
// @Produce json
// @Param id path string true "Technician ID"
// @Success 200 {object} models.Technician
// @Router /technicians/{id} [get]
func (h *TechnicianHandler) Get(c *gin.Context) {
	technician, err := h.technicians.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, technician)
}

// Create godoc
// @Summary Create technician
// @Tags Technicians
// @Accept json
// @Produce json
// @Param payload body service.TechnicianRequest true "Technician payload"
// @Success 201 {object} models.Technician
// @Router /technicians [post]
func (h *TechnicianHandler) Create(c *gin.Context) {
	var req service.TechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	technician, err := h.technicians.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, technician)
}

// Update godoc
// @Summary Update technician
// @Tags Technicians
// @Accept json
// @Produce json
// @Param id path string true "Technician ID"
// @Param payload body service.TechnicianRequest true "Technician payload"
// @Success 200 {object} models.Technician
// @Router /technicians/{id} [put]
func (h *TechnicianHandler) Update(c *gin.Context) {
	var req service.TechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	technician, err := h.technicians.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, technician)
}

// Delete godoc
// @Summary Delete technician
// @Tags Technicians
// @Produce json
// @Param id path string true "Technician ID"
// @Success 204
// @Router /technicians/{id} [delete]
func (h *TechnicianHandler) Delete(c *gin.Context) {
	if err := h.technicians.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
