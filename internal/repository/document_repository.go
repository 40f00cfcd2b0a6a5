package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

// DocumentRepository manages persistence for documents and their versions.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns documents matching the provided filters.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentDetail, int, error) {
	base := "FROM documents d LEFT JOIN document_issuers i ON i.id = d.issuer_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("d.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(d.name) LIKE $%d OR LOWER(d.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"code":       "d.code",
		"name":       "d.name",
		"category":   "d.category",
		"created_at": "d.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "d.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT d.id, d.code, d.name, d.category, d.issuer_id, d.required, d.validity_days, d.created_at, d.updated_at,
        i.name AS issuer_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var documents []models.DocumentDetail
	if err := r.db.SelectContext(ctx, &documents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return documents, total, nil
}

// FindByID fetches a document detail, versions included.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.DocumentDetail, error) {
	const query = `SELECT d.id, d.code, d.name, d.category, d.issuer_id, d.required, d.validity_days, d.created_at, d.updated_at,
        i.name AS issuer_name
        FROM documents d
        LEFT JOIN document_issuers i ON i.id = d.issuer_id
        WHERE d.id = $1`
	var detail models.DocumentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	versions, err := r.VersionsByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Versions = versions
	return &detail, nil
}

// VersionsByDocument returns the versions of a document, newest first.
func (r *DocumentRepository) VersionsByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	const query = `SELECT id, document_id, label, notes, issued_at, created_at
        FROM document_versions WHERE document_id = $1 ORDER BY created_at DESC`
	versions := []models.DocumentVersion{}
	if err := r.db.SelectContext(ctx, &versions, query, documentID); err != nil {
		return nil, fmt.Errorf("document versions: %w", err)
	}
	return versions, nil
}

// ExistsByCode checks if a document with the given code exists, optionally excluding an ID.
func (r *DocumentRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM documents WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check document code: %w", err)
	}
	return true, nil
}

// VersionIDsInUse returns, from the given version IDs, those referenced by uploads.
func (r *DocumentRepository) VersionIDsInUse(ctx context.Context, versionIDs []string) ([]string, error) {
	if len(versionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT DISTINCT document_version_id FROM uploads WHERE document_version_id IN (?)", versionIDs)
	if err != nil {
		return nil, fmt.Errorf("build version usage query: %w", err)
	}
	query = r.db.Rebind(query)
	inUse := []string{}
	if err := r.db.SelectContext(ctx, &inUse, query, args...); err != nil {
		return nil, fmt.Errorf("check versions in use: %w", err)
	}
	return inUse, nil
}

// Create inserts the document and its versions in one transaction.
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document, versions []models.DocumentVersion) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	document.CreatedAt = now
	document.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create document: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO documents (id, code, name, category, issuer_id, required, validity_days, created_at, updated_at)
        VALUES (:id, :code, :name, :category, :issuer_id, :required, :validity_days, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := insertVersions(ctx, tx, document.ID, versions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create document: %w", err)
	}
	return nil
}

// Update modifies the document and replaces versions not referenced by uploads.
// keepIDs are the incoming version IDs that already exist and stay untouched.
func (r *DocumentRepository) Update(ctx context.Context, document *models.Document, keepIDs []string, newVersions []models.DocumentVersion) error {
	document.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update document: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE documents SET code = :code, name = :name, category = :category, issuer_id = :issuer_id,
        required = :required, validity_days = :validity_days, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	delQuery := "DELETE FROM document_versions WHERE document_id = ?"
	delArgs := []interface{}{document.ID}
	if len(keepIDs) > 0 {
		var inErr error
		delQuery, delArgs, inErr = sqlx.In("DELETE FROM document_versions WHERE document_id = ? AND id NOT IN (?)", document.ID, keepIDs)
		if inErr != nil {
			return fmt.Errorf("build version delete: %w", inErr)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(delQuery), delArgs...); err != nil {
		return fmt.Errorf("prune document versions: %w", err)
	}

	if err := insertVersions(ctx, tx, document.ID, newVersions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update document: %w", err)
	}
	return nil
}

func insertVersions(ctx context.Context, tx *sqlx.Tx, documentID string, versions []models.DocumentVersion) error {
	now := time.Now().UTC()
	for i := range versions {
		v := &versions[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.DocumentID = documentID
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		const query = `INSERT INTO document_versions (id, document_id, label, notes, issued_at, created_at)
            VALUES (:id, :document_id, :label, :notes, :issued_at, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, v); err != nil {
			return fmt.Errorf("insert document version: %w", err)
		}
	}
	return nil
}

// Delete removes the document and its versions. Missing rows are not an error.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete document: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_versions WHERE document_id = $1", id); err != nil {
		return fmt.Errorf("clear document versions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete document: %w", err)
	}
	return nil
}
