package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// DocumentHandler exposes document endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Param search query string false "Search by code or name"
// @Param category query string false "Filter by category"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var filter models.DocumentFilter
	filter.ListQuery = parseListQuery(c)
	filter.Category = c.Query("category")
	filter.Normalize()

	documents, total, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, documents, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get document detail with versions
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} models.DocumentDetail
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	document, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document)
}

// Create godoc
// @Summary Create document with versions
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body service.DocumentRequest true "Document payload"
// @Success 201 {object} models.DocumentDetail
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req service.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	document, err := h.documents.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, document)
}

// Update godoc
// @Summary Update document and reconcile versions
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body service.DocumentRequest true "Document payload"
// @Success 200 {object} models.DocumentDetail
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	var req service.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	document, err := h.documents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document)
}

// Delete godoc
// @Summary Delete document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
