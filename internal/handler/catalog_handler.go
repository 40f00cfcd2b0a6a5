package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	"github.com/hseworks/sst-backoffice-api/internal/service"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
	"github.com/hseworks/sst-backoffice-api/pkg/response"
)

// CatalogHandler exposes the name-only lookup resources. The same handler set
// serves every catalog; Register binds it once per slug.
type CatalogHandler struct {
	catalogs *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalogs *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogs: catalogs}
}

// Register mounts the CRUD routes for every catalog definition.
func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	for _, def := range models.Catalogs {
		group := rg.Group("/" + def.Slug)
		group.GET("", h.list(def))
		group.GET("/:id", h.get(def))
		group.POST("", h.create(def))
		group.PUT("/:id", h.update(def))
		group.DELETE("/:id", h.remove(def))
	}
}

// list godoc
// @Summary List catalog entries
// @Tags Catalogs
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /{catalog} [get]
func (h *CatalogHandler) list(def models.CatalogDefinition) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := parseListQuery(c)
		filter.Normalize()
		entries, total, err := h.catalogs.List(c.Request.Context(), def, filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.List(c, entries, total, filter.Page, filter.PerPage)
	}
}

func (h *CatalogHandler) get(def models.CatalogDefinition) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := h.catalogs.Get(c.Request.Context(), def, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entry)
	}
}

func (h *CatalogHandler) create(def models.CatalogDefinition) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CatalogEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		entry, err := h.catalogs.Create(c.Request.Context(), def, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, entry)
	}
}

func (h *CatalogHandler) update(def models.CatalogDefinition) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CatalogEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
		entry, err := h.catalogs.Update(c.Request.Context(), def, c.Param("id"), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, entry)
	}
}

func (h *CatalogHandler) remove(def models.CatalogDefinition) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.catalogs.Delete(c.Request.Context(), def, c.Param("id")); err != nil {
			response.Error(c, err)
			return
		}
		response.NoContent(c)
	}
}
