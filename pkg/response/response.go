package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

// ListEnvelope is the pagination contract every list endpoint returns.
type ListEnvelope struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// ErrorEnvelope wraps a single typed error.
type ErrorEnvelope struct {
	Error *appErrors.Error `json:"error"`
}

// ValidationEnvelope carries the per-field messages of a 422 response.
type ValidationEnvelope struct {
	Errors map[string]string `json:"errors"`
}

// JSON sends a success response with the given payload.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// List sends a paginated collection using the common list envelope.
func List(c *gin.Context, data interface{}, total, page, perPage int) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, ListEnvelope{Data: data, Total: total, Page: page, PerPage: perPage})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response. Validation errors render as 422 with the
// field map; everything else uses the typed error envelope.
func Error(c *gin.Context, err error) {
	c.Header("Cache-Control", "no-store")
	if v, ok := appErrors.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, ValidationEnvelope{Errors: v.Fields})
		return
	}
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, ErrorEnvelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
