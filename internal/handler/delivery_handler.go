package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// DeliveryHandler exposes PPE delivery endpoints.
type DeliveryHandler struct {
	deliveries *service.DeliveryService
	metrics    *service.MetricsService
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(deliveries *service.DeliveryService, metrics *service.MetricsService) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, metrics: metrics}
}

// List godoc
// @Summary List deliveries
// @Tags Deliveries
// @Produce json
// @Param search query string false "Search by document number or employee"
// @Param employee_id query string false "Filter by employee"
// @Param technician_id query string false "Filter by technician"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /epi-deliveries [get]
func (h *DeliveryHandler) List(c *gin.Context) {
	var filter models.EpiDeliveryFilter
	filter.ListQuery = parseListQuery(c)
	filter.EmployeeID = c.Query("employee_id")
	filter.TechnicianID = c.Query("technician_id")
	filter.Normalize()

	deliveries, total, err := h.deliveries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, deliveries, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get delivery detail with items
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} models.EpiDeliveryDetail
// @Router /epi-deliveries/{id} [get]
func (h *DeliveryHandler) Get(c *gin.Context) {
	delivery, err := h.deliveries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, delivery)
}

// Create godoc
// @Summary Register a delivery with its items
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param payload body service.DeliveryRequest true "Delivery payload"
// @Success 201 {object} models.EpiDeliveryDetail
// @Router /epi-deliveries [post]
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req service.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	delivery, err := h.deliveries.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, delivery)
}

// Update godoc
// @Summary Update delivery and replace its items
// @Tags Deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Param payload body service.DeliveryRequest true "Delivery payload"
// @Success 200 {object} models.EpiDeliveryDetail
// @Router /epi-deliveries/{id} [put]
func (h *DeliveryHandler) Update(c *gin.Context) {
	var req service.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	delivery, err := h.deliveries.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, delivery)
}

// Receipt godoc
// @Summary Download the signed delivery receipt as PDF
// @Tags Deliveries
// @Produce application/pdf
// @Param id path string true "Delivery ID"
// @Success 200 {file} binary
// @Router /epi-deliveries/{id}/receipt [get]
func (h *DeliveryHandler) Receipt(c *gin.Context) {
	data, filename, err := h.deliveries.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveExport("receipt")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// Delete godoc
// @Summary Delete delivery
// @Tags Deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 204
// @Router /epi-deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(c *gin.Context) {
	if err := h.deliveries.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
