package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// MedicalExamHandler exposes occupational exam endpoints.
type MedicalExamHandler struct {
	exams *service.MedicalExamService
}

// NewMedicalExamHandler constructs MedicalExamHandler.
func NewMedicalExamHandler(exams *service.MedicalExamService) *MedicalExamHandler {
	return &MedicalExamHandler{exams: exams}
}

// List godoc
// @Summary List medical exams
// @Tags MedicalExams
// @Produce json
// @Param search query string false "Search by employee name"
// @Param employee_id query string false "Filter by employee"
// @Param exam_type query string false "Filter by exam type"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /medical-exams [get]
func (h *MedicalExamHandler) List(c *gin.Context) {
	var filter models.MedicalExamFilter
	filter.ListQuery = parseListQuery(c)
	filter.EmployeeID = c.Query("employee_id")
	filter.ExamType = models.ExamType(c.Query("exam_type"))
	filter.Normalize()

	exams, total, err := h.exams.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, exams, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get medical exam detail with attachments
// @Tags MedicalExams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} models.MedicalExamDetail
// @Router /medical-exams/{id} [get]
func (h *MedicalExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam)
}

// Create godoc
// @Summary Create medical exam
// @Tags MedicalExams
// @Accept json
// @Produce json
// @Param payload body service.MedicalExamRequest true "Exam payload"
// @Success 201 {object} models.MedicalExamDetail
// @Router /medical-exams [post]
func (h *MedicalExamHandler) Create(c *gin.Context) {
	var req service.MedicalExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update medical exam
// @Tags MedicalExams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body service.MedicalExamRequest true "Exam payload"
// @Success 200 {object} models.MedicalExamDetail
// @Router /medical-exams/{id} [put]
func (h *MedicalExamHandler) Update(c *gin.Context) {
	var req service.MedicalExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.exams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam)
}

// Delete godoc
// @Summary Delete medical exam
// @Tags MedicalExams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 204
// @Router /medical-exams/{id} [delete]
func (h *MedicalExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
