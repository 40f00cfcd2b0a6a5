package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// OccurrenceHandler exposes safety occurrence endpoints.
type OccurrenceHandler struct {
	occurrences *service.OccurrenceService
	metrics     *service.MetricsService
}

// NewOccurrenceHandler constructs OccurrenceHandler.
func NewOccurrenceHandler(occurrences *service.OccurrenceService, metrics *service.MetricsService) *OccurrenceHandler {
	return &OccurrenceHandler{occurrences: occurrences, metrics: metrics}
}

func occurrenceFilter(c *gin.Context) models.OccurrenceFilter {
	var filter models.OccurrenceFilter
	filter.ListQuery = parseListQuery(c)
	filter.CompanyID = c.Query("company_id")
	filter.Status = models.OccurrenceStatus(c.Query("status"))
	filter.Classification = models.OccurrenceClassification(c.Query("classification"))
	return filter
}

// List godoc
// @Summary List occurrences
// @Tags Occurrences
// @Produce json
// @Param search query string false "Search by description"
// @Param company_id query string false "Filter by company"
// @Param status query string false "Filter by status"
// @Param classification query string false "Filter by classification"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /occurrences [get]
func (h *OccurrenceHandler) List(c *gin.Context) {
	filter := occurrenceFilter(c)
	filter.Normalize()

	occurrences, total, err := h.occurrences.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, occurrences, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get occurrence detail
// @Tags Occurrences
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 200 {object} models.OccurrenceDetail
// @Router /occurrences/{id} [get]
func (h *OccurrenceHandler) Get(c *gin.Context) {
	occurrence, err := h.occurrences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence)
}

// Create godoc
// @Summary Register an occurrence
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param payload body service.OccurrenceRequest true "Occurrence payload"
// @Success 201 {object} models.OccurrenceDetail
// @Router /occurrences [post]
func (h *OccurrenceHandler) Create(c *gin.Context) {
	var req service.OccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, occurrence)
}

// Update godoc
// @Summary Update occurrence
// @Tags Occurrences
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body service.OccurrenceRequest true "Occurrence payload"
// @Success 200 {object} models.OccurrenceDetail
// @Router /occurrences/{id} [put]
func (h *OccurrenceHandler) Update(c *gin.Context) {
	var req service.OccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	occurrence, err := h.occurrences.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrence)
}

// Export godoc
// @Summary Export occurrences as CSV, current filters applied
// @Tags Occurrences
// @Produce text/csv
// @Param search query string false "Search by description"
// @Param company_id query string false "Filter by company"
// @Param status query string false "Filter by status"
// @Param classification query string false "Filter by classification"
// @Success 200 {file} binary
// @Router /occurrences/export [get]
func (h *OccurrenceHandler) Export(c *gin.Context) {
	data, err := h.occurrences.ExportCSV(c.Request.Context(), occurrenceFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveExport("occurrences_csv")
	filename := fmt.Sprintf("ocorrencias-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Delete godoc
// @Summary Delete occurrence
// @Tags Occurrences
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 204
// @Router /occurrences/{id} [delete]
func (h *OccurrenceHandler) Delete(c *gin.Context) {
	if err := h.occurrences.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
