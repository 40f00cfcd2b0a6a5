package models

import "time"

// Epi is a personal protective equipment item. The CA number is the Brazilian
// safety-equipment registry certification.
type Epi struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CANumber     string    `db:"ca_number" json:"ca_number"`
	BrandID      *string   `db:"brand_id" json:"brand_id,omitempty"`
	ValidityDays int       `db:"validity_days" json:"validity_days"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EpiDetail resolves the brand label.
type EpiDetail struct {
	Epi
	BrandName *string `db:"brand_name" json:"brand_name,omitempty"`
}

// EpiFilter encapsulates search parameters for listing EPIs.
type EpiFilter struct {
	ListQuery
	BrandID string
}
