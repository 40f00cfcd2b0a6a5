package models

import "time"

// EpiDelivery records PPE handed to an employee by a technician. Items are
// persisted atomically with the delivery.
type EpiDelivery struct {
	ID             string    `db:"id" json:"id"`
	EmployeeID     string    `db:"employee_id" json:"employee_id"`
	TechnicianID   string    `db:"technician_id" json:"technician_id"`
	DocumentNumber string    `db:"document_number" json:"document_number"`
	DeliveredAt    time.Time `db:"delivered_at" json:"delivered_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// EpiDeliveryItem is one delivered equipment line.
type EpiDeliveryItem struct {
	ID         string `db:"id" json:"id"`
	DeliveryID string `db:"delivery_id" json:"delivery_id"`
	EpiID      string `db:"epi_id" json:"epi_id"`
	Quantity   int    `db:"quantity" json:"quantity"`
	Notes      string `db:"notes" json:"notes"`
}

// EpiDeliveryItemDetail resolves the equipment labels for receipts/tables.
type EpiDeliveryItemDetail struct {
	EpiDeliveryItem
	EpiName  string `db:"epi_name" json:"epi_name"`
	CANumber string `db:"ca_number" json:"ca_number"`
}

// EpiDeliveryDetail resolves relation labels and the item list.
type EpiDeliveryDetail struct {
	EpiDelivery
	EmployeeName   string                  `db:"employee_name" json:"employee_name"`
	TechnicianName string                  `db:"technician_name" json:"technician_name"`
	Items          []EpiDeliveryItemDetail `db:"-" json:"items"`
}

// EpiDeliveryFilter encapsulates search parameters for listing deliveries.
type EpiDeliveryFilter struct {
	ListQuery
	EmployeeID   string
	TechnicianID string
}
