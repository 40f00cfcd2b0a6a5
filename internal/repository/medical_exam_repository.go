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

// MedicalExamRepository manages persistence for occupational exams.
type MedicalExamRepository struct {
	db *sqlx.DB
}

// NewMedicalExamRepository constructs a MedicalExamRepository.
func NewMedicalExamRepository(db *sqlx.DB) *MedicalExamRepository {
	return &MedicalExamRepository{db: db}
}

// List returns exams matching the provided filters.
func (r *MedicalExamRepository) List(ctx context.Context, filter models.MedicalExamFilter) ([]models.MedicalExamDetail, int, error) {
	base := "FROM medical_exams m INNER JOIN employees e ON e.id = m.employee_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("m.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.ExamType != "" {
		conditions = append(conditions, fmt.Sprintf("m.exam_type = $%d", len(args)+1))
		args = append(args, filter.ExamType)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(e.full_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"exam_date":  "m.exam_date",
		"exam_type":  "m.exam_type",
		"created_at": "m.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "m.exam_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT m.id, m.employee_id, m.exam_type, m.exam_date, m.fit, m.cid_code, m.notes, m.created_at, m.updated_at,
        e.full_name AS employee_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var exams []models.MedicalExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list medical exams: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count medical exams: %w", err)
	}
	return exams, total, nil
}

// FindByID fetches an exam detail by ID.
func (r *MedicalExamRepository) FindByID(ctx context.Context, id string) (*models.MedicalExamDetail, error) {
	const query = `SELECT m.id, m.employee_id, m.exam_type, m.exam_date, m.fit, m.cid_code, m.notes, m.created_at, m.updated_at,
        e.full_name AS employee_name
        FROM medical_exams m
        INNER JOIN employees e ON e.id = m.employee_id
        WHERE m.id = $1`
	var detail models.MedicalExamDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new exam record.
func (r *MedicalExamRepository) Create(ctx context.Context, exam *models.MedicalExam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	const query = `INSERT INTO medical_exams (id, employee_id, exam_type, exam_date, fit, cid_code, notes, created_at, updated_at)
        VALUES (:id, :employee_id, :exam_type, :exam_date, :fit, :cid_code, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create medical exam: %w", err)
	}
	return nil
}

// Update modifies an existing exam record.
func (r *MedicalExamRepository) Update(ctx context.Context, exam *models.MedicalExam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE medical_exams SET employee_id = :employee_id, exam_type = :exam_type, exam_date = :exam_date,
        fit = :fit, cid_code = :cid_code, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update medical exam: %w", err)
	}
	return nil
}

// Delete removes an exam record. Missing rows are not an error.
func (r *MedicalExamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM medical_exams WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete medical exam: %w", err)
	}
	return nil
}
