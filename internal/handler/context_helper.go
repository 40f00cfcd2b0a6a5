package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hseworks/sst-backoffice-api/internal/middleware"
	"github.com/hseworks/sst-backoffice-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// parseListQuery reads the shared list parameters. Out-of-range values are
// clamped later by ListQuery.Normalize.
func parseListQuery(c *gin.Context) models.ListQuery {
	var q models.ListQuery
	q.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "25")); err == nil {
		q.PerPage = perPage
	}
	q.SortBy = c.Query("sort_by")
	q.SortOrder = c.Query("sort_order")
	return q
}
