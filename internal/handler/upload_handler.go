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

// UploadHandler exposes attachment endpoints, multipart in and file bytes out.
type UploadHandler struct {
	uploads *service.UploadService
	metrics *service.MetricsService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService, metrics *service.MetricsService) *UploadHandler {
	return &UploadHandler{uploads: uploads, metrics: metrics}
}

func parseFormDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func uploadRequestFromForm(c *gin.Context) (service.UploadRequest, error) {
	req := service.UploadRequest{
		SubjectType: models.UploadSubject(c.PostForm("subject_type")),
		SubjectID:   c.PostForm("subject_id"),
		Status:      models.UploadStatus(c.PostForm("status")),
	}
	if versionID := c.PostForm("document_version_id"); versionID != "" {
		req.DocumentVersionID = &versionID
	}
	issueDate, err := parseFormDate(c.PostForm("issue_date"))
	if err != nil {
		return req, appErrors.NewFieldValidation("issue_date", "is not a valid date")
	}
	req.IssueDate = issueDate
	dueDate, err := parseFormDate(c.PostForm("due_date"))
	if err != nil {
		return req, appErrors.NewFieldValidation("due_date", "is not a valid date")
	}
	req.DueDate = dueDate
	return req, nil
}

// uploadFileFromForm returns the file part, or nil when the form has none.
// The caller owns closing the returned reader through the cleanup func.
func uploadFileFromForm(c *gin.Context) (*service.UploadFile, func(), error) {
	header, err := c.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, func() {}, nil
		}
		return nil, func() {}, appErrors.NewFieldValidation("file", "could not be read")
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, appErrors.NewFieldValidation("file", "could not be read")
	}
	upload := &service.UploadFile{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Reader:   file,
	}
	return upload, func() { _ = file.Close() }, nil
}

// List godoc
// @Summary List uploads
// @Tags Uploads
// @Produce json
// @Param search query string false "Search by file name"
// @Param subject_type query string false "Filter by subject type"
// @Param subject_id query string false "Filter by subject id"
// @Param status query string false "Filter by review status"
// @Param page query int false "Page"
// @Param per_page query int false "Page size (10, 25, 50, 100)"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.ListEnvelope
// @Router /uploads [get]
func (h *UploadHandler) List(c *gin.Context) {
	var filter models.UploadFilter
	filter.ListQuery = parseListQuery(c)
	filter.SubjectType = models.UploadSubject(c.Query("subject_type"))
	filter.SubjectID = c.Query("subject_id")
	filter.Status = models.UploadStatus(c.Query("status"))
	filter.Normalize()

	uploads, total, err := h.uploads.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, uploads, total, filter.Page, filter.PerPage)
}

// Get godoc
// @Summary Get upload metadata with its signed view URL
// @Tags Uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} models.UploadDetail
// @Router /uploads/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	upload, err := h.uploads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, upload)
}

// Create godoc
// @Summary Upload a file attachment
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param subject_type formData string true "Subject type"
// @Param subject_id formData string true "Subject ID"
// @Param document_version_id formData string false "Document version"
// @Param status formData string false "Initial review status"
// @Param issue_date formData string false "Issue date (YYYY-MM-DD)"
// @Param due_date formData string false "Due date (YYYY-MM-DD)"
// @Success 201 {object} models.UploadDetail
// @Router /uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	req, err := uploadRequestFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, closeFile, err := uploadFileFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	upload, err := h.uploads.Create(c.Request.Context(), req, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveUpload(upload.SizeBytes)
	response.Created(c, upload)
}

// Update godoc
// @Summary Replace upload metadata and optionally the stored file
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Upload ID"
// @Param file formData file false "Replacement file"
// @Param subject_type formData string true "Subject type"
// @Param subject_id formData string true "Subject ID"
// @Success 200 {object} models.UploadDetail
// @Router /uploads/{id} [put]
func (h *UploadHandler) Update(c *gin.Context) {
	req, err := uploadRequestFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, closeFile, err := uploadFileFromForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	upload, err := h.uploads.Update(c.Request.Context(), c.Param("id"), req, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	if file != nil {
		h.metrics.ObserveUpload(upload.SizeBytes)
	}
	response.JSON(c, http.StatusOK, upload)
}

type uploadStatusRequest struct {
	Status models.UploadStatus `json:"status"`
}

// UpdateStatus godoc
// @Summary Move the upload to a new review status
// @Tags Uploads
// @Accept json
// @Produce json
// @Param id path string true "Upload ID"
// @Param payload body uploadStatusRequest true "Status payload"
// @Success 200 {object} models.UploadDetail
// @Router /uploads/{id}/status [patch]
func (h *UploadHandler) UpdateStatus(c *gin.Context) {
	var req uploadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	upload, err := h.uploads.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, upload)
}

// View godoc
// @Summary Stream the stored file bytes
// @Description Bearer callers may omit the token; anonymous callers need the
// @Description signed token issued in the upload's file_url.
// @Tags Uploads
// @Produce octet-stream
// @Param id path string true "Upload ID"
// @Param token query string false "Signed view token"
// @Success 200 {file} binary
// @Router /uploads/view/{id} [get]
func (h *UploadHandler) View(c *gin.Context) {
	authenticated := claimsFromContext(c) != nil
	upload, file, err := h.uploads.OpenFile(c.Request.Context(), c.Param("id"), c.Query("token"), authenticated)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", upload.FileName),
	}
	c.DataFromReader(http.StatusOK, upload.SizeBytes, upload.MimeType, file, headers)
}

// Delete godoc
// @Summary Delete upload and its stored file
// @Tags Uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 204
// @Router /uploads/{id} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.uploads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
