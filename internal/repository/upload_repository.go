package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

// UploadRepository manages persistence for file uploads.
type UploadRepository struct {
	db *sqlx.DB
}

// NewUploadRepository constructs an UploadRepository.
func NewUploadRepository(db *sqlx.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// List returns uploads matching the provided filters.
func (r *UploadRepository) List(ctx context.Context, filter models.UploadFilter) ([]models.Upload, int, error) {
	base := "FROM uploads u"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.SubjectType != "" {
		conditions = append(conditions, fmt.Sprintf("u.subject_type = $%d", len(args)+1))
		args = append(args, filter.SubjectType)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("u.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("u.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(u.file_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"file_name":  "u.file_name",
		"status":     "u.status",
		"due_date":   "u.due_date",
		"created_at": "u.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "u.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT u.id, u.subject_type, u.subject_id, u.document_version_id, u.status, u.issue_date, u.due_date,
        u.file_name, u.file_path, u.mime_type, u.size_bytes, u.created_at, u.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var uploads []models.Upload
	if err := r.db.SelectContext(ctx, &uploads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list uploads: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count uploads: %w", err)
	}
	return uploads, total, nil
}

// FindByID fetches an upload by ID.
func (r *UploadRepository) FindByID(ctx context.Context, id string) (*models.Upload, error) {
	const query = `SELECT id, subject_type, subject_id, document_version_id, status, issue_date, due_date,
        file_name, file_path, mime_type, size_bytes, created_at, updated_at
        FROM uploads WHERE id = $1`
	var upload models.Upload
	if err := r.db.GetContext(ctx, &upload, query, id); err != nil {
		return nil, err
	}
	return &upload, nil
}

// BySubject returns the uploads attached to one entity, newest first.
func (r *UploadRepository) BySubject(ctx context.Context, subjectType models.UploadSubject, subjectID string) ([]models.Upload, error) {
	const query = `SELECT id, subject_type, subject_id, document_version_id, status, issue_date, due_date,
        file_name, file_path, mime_type, size_bytes, created_at, updated_at
        FROM uploads WHERE subject_type = $1 AND subject_id = $2 ORDER BY created_at DESC`
	uploads := []models.Upload{}
	if err := r.db.SelectContext(ctx, &uploads, query, subjectType, subjectID); err != nil {
		return nil, fmt.Errorf("uploads by subject: %w", err)
	}
	return uploads, nil
}

// Create inserts a new upload row.
func (r *UploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	if upload.ID == "" {
		upload.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	upload.CreatedAt = now
	upload.UpdatedAt = now
	const query = `INSERT INTO uploads (id, subject_type, subject_id, document_version_id, status, issue_date, due_date, file_name, file_path, mime_type, size_bytes, created_at, updated_at)
        VALUES (:id, :subject_type, :subject_id, :document_version_id, :status, :issue_date, :due_date, :file_name, :file_path, :mime_type, :size_bytes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, upload); err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	return nil
}

// Update modifies an existing upload, file columns included.
func (r *UploadRepository) Update(ctx context.Context, upload *models.Upload) error {
	upload.UpdatedAt = time.Now().UTC()
	const query = `UPDATE uploads SET document_version_id = :document_version_id, status = :status, issue_date = :issue_date, due_date = :due_date,
        file_name = :file_name, file_path = :file_path, mime_type = :mime_type, size_bytes = :size_bytes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, upload); err != nil {
		return fmt.Errorf("update upload: %w", err)
	}
	return nil
}

// UpdateStatus changes only the review status of an upload.
func (r *UploadRepository) UpdateStatus(ctx context.Context, id string, status models.UploadStatus) error {
	const query = `UPDATE uploads SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	return nil
}

// Delete removes an upload row. Missing rows are not an error.
func (r *UploadRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM uploads WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
