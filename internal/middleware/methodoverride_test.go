package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestMethodOverrideRewritesPost(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/uploads/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("status"))
	})
	srv := MethodOverride(r)

	body, contentType := multipartBody(t, map[string]string{"_method": "PUT", "status": "aprovado"})
	req := httptest.NewRequest(http.MethodPost, "/uploads/u1", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aprovado", w.Body.String())
}

func TestMethodOverrideIgnoresPlainPost(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/uploads/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	srv := MethodOverride(r)

	body, contentType := multipartBody(t, map[string]string{"status": "aprovado"})
	req := httptest.NewRequest(http.MethodPost, "/uploads/u1", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodOverrideLeavesJSONAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/uploads", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	srv := MethodOverride(r)

	req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}
