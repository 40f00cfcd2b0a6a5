package models

import "time"

// Document is a controlled document template (e.g. PGR, PCMSO, ASO).
type Document struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Category     string    `db:"category" json:"category"`
	IssuerID     *string   `db:"issuer_id" json:"issuer_id,omitempty"`
	Required     bool      `db:"required" json:"required"`
	ValidityDays int       `db:"validity_days" json:"validity_days"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentVersion is one issued revision of a document. Uploads point at a
// specific version.
type DocumentVersion struct {
	ID         string     `db:"id" json:"id"`
	DocumentID string     `db:"document_id" json:"document_id"`
	Label      string     `db:"label" json:"label"`
	Notes      string     `db:"notes" json:"notes"`
	IssuedAt   *time.Time `db:"issued_at" json:"issued_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// DocumentDetail carries the document with its versions and issuer label.
type DocumentDetail struct {
	Document
	IssuerName *string           `db:"issuer_name" json:"issuer_name,omitempty"`
	Versions   []DocumentVersion `db:"-" json:"versions"`
}

// DocumentFilter encapsulates search parameters for listing documents.
type DocumentFilter struct {
	ListQuery
	Category string
}
