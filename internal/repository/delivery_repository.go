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

// DeliveryRepository manages persistence for PPE deliveries and their items.
type DeliveryRepository struct {
	db *sqlx.DB
}

// NewDeliveryRepository constructs a DeliveryRepository.
func NewDeliveryRepository(db *sqlx.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// List returns deliveries matching the provided filters.
func (r *DeliveryRepository) List(ctx context.Context, filter models.EpiDeliveryFilter) ([]models.EpiDeliveryDetail, int, error) {
	base := "FROM epi_deliveries d INNER JOIN employees e ON e.id = d.employee_id INNER JOIN technicians t ON t.id = d.technician_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("d.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.TechnicianID != "" {
		conditions = append(conditions, fmt.Sprintf("d.technician_id = $%d", len(args)+1))
		args = append(args, filter.TechnicianID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.full_name) LIKE $%d OR LOWER(d.document_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"delivered_at":    "d.delivered_at",
		"document_number": "d.document_number",
		"created_at":      "d.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "d.delivered_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	query := fmt.Sprintf(`SELECT d.id, d.employee_id, d.technician_id, d.document_number, d.delivered_at, d.created_at, d.updated_at,
        e.full_name AS employee_name, t.name AS technician_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, filter.PerPage, filter.Offset())

	var deliveries []models.EpiDeliveryDetail
	if err := r.db.SelectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list deliveries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count deliveries: %w", err)
	}
	return deliveries, total, nil
}

// FindByID fetches a delivery detail, items included.
func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*models.EpiDeliveryDetail, error) {
	const query = `SELECT d.id, d.employee_id, d.technician_id, d.document_number, d.delivered_at, d.created_at, d.updated_at,
        e.full_name AS employee_name, t.name AS technician_name
        FROM epi_deliveries d
        INNER JOIN employees e ON e.id = d.employee_id
        INNER JOIN technicians t ON t.id = d.technician_id
        WHERE d.id = $1`
	var detail models.EpiDeliveryDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	items, err := r.ItemsByDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Items = items
	return &detail, nil
}

// ItemsByDelivery returns the item lines of one delivery.
func (r *DeliveryRepository) ItemsByDelivery(ctx context.Context, deliveryID string) ([]models.EpiDeliveryItemDetail, error) {
	const query = `SELECT i.id, i.delivery_id, i.epi_id, i.quantity, i.notes,
        p.name AS epi_name, p.ca_number
        FROM epi_delivery_items i
        INNER JOIN epis p ON p.id = i.epi_id
        WHERE i.delivery_id = $1
        ORDER BY p.name ASC`
	items := []models.EpiDeliveryItemDetail{}
	if err := r.db.SelectContext(ctx, &items, query, deliveryID); err != nil {
		return nil, fmt.Errorf("delivery items: %w", err)
	}
	return items, nil
}

// Create inserts the delivery and its items in one transaction.
func (r *DeliveryRepository) Create(ctx context.Context, delivery *models.EpiDelivery, items []models.EpiDeliveryItem) error {
	if delivery.ID == "" {
		delivery.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	delivery.CreatedAt = now
	delivery.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create delivery: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO epi_deliveries (id, employee_id, technician_id, document_number, delivered_at, created_at, updated_at)
        VALUES (:id, :employee_id, :technician_id, :document_number, :delivered_at, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, delivery); err != nil {
		return fmt.Errorf("create delivery: %w", err)
	}
	if err := replaceDeliveryItems(ctx, tx, delivery.ID, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create delivery: %w", err)
	}
	return nil
}

// Update modifies the delivery and replaces its items in one transaction.
func (r *DeliveryRepository) Update(ctx context.Context, delivery *models.EpiDelivery, items []models.EpiDeliveryItem) error {
	delivery.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update delivery: %w", err)
	}
	defer tx.Rollback()

	const query = `UPDATE epi_deliveries SET employee_id = :employee_id, technician_id = :technician_id,
        document_number = :document_number, delivered_at = :delivered_at, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, delivery); err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	if err := replaceDeliveryItems(ctx, tx, delivery.ID, items); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update delivery: %w", err)
	}
	return nil
}

func replaceDeliveryItems(ctx context.Context, tx *sqlx.Tx, deliveryID string, items []models.EpiDeliveryItem) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM epi_delivery_items WHERE delivery_id = $1", deliveryID); err != nil {
		return fmt.Errorf("clear delivery items: %w", err)
	}
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.DeliveryID = deliveryID
		const query = `INSERT INTO epi_delivery_items (id, delivery_id, epi_id, quantity, notes)
            VALUES (:id, :delivery_id, :epi_id, :quantity, :notes)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert delivery item: %w", err)
		}
	}
	return nil
}

// Delete removes the delivery and its items. Missing rows are not an error.
func (r *DeliveryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete delivery: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM epi_delivery_items WHERE delivery_id = $1", id); err != nil {
		return fmt.Errorf("clear delivery items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM epi_deliveries WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete delivery: %w", err)
	}
	return nil
}
