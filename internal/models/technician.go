package models

import "time"

// Technician is a safety technician who signs off PPE deliveries.
type Technician struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	RegistryNumber string    `db:"registry_number" json:"registry_number"`
	Email          string    `db:"email" json:"email"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
