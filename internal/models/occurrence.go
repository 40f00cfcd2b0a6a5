package models

import "time"

// OccurrenceClassification separates accidents from near misses.
type OccurrenceClassification string

const (
	ClassificationAccident  OccurrenceClassification = "acidente"
	ClassificationIncident  OccurrenceClassification = "incidente"
	ClassificationDeviation OccurrenceClassification = "desvio"
)

// Valid reports whether the classification is known.
func (c OccurrenceClassification) Valid() bool {
	switch c {
	case ClassificationAccident, ClassificationIncident, ClassificationDeviation:
		return true
	}
	return false
}

// OccurrenceSeverity grades the outcome.
type OccurrenceSeverity string

const (
	SeverityMinor    OccurrenceSeverity = "leve"
	SeverityModerate OccurrenceSeverity = "moderada"
	SeveritySevere   OccurrenceSeverity = "grave"
	SeverityFatal    OccurrenceSeverity = "fatal"
)

// Valid reports whether the severity is known.
func (s OccurrenceSeverity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere, SeverityFatal:
		return true
	}
	return false
}

// OccurrenceStatus tracks the investigation state.
type OccurrenceStatus string

const (
	OccurrenceOpen     OccurrenceStatus = "aberta"
	OccurrenceReview   OccurrenceStatus = "em_analise"
	OccurrenceResolved OccurrenceStatus = "concluida"
)

// Valid reports whether the status is known.
func (s OccurrenceStatus) Valid() bool {
	switch s {
	case OccurrenceOpen, OccurrenceReview, OccurrenceResolved:
		return true
	}
	return false
}

// Occurrence is a workplace occurrence record.
type Occurrence struct {
	ID               string                   `db:"id" json:"id"`
	CompanyID        string                   `db:"company_id" json:"company_id"`
	SectorID         *string                  `db:"sector_id" json:"sector_id,omitempty"`
	EmployeeID       *string                  `db:"employee_id" json:"employee_id,omitempty"`
	OccurrenceTypeID *string                  `db:"occurrence_type_id" json:"occurrence_type_id,omitempty"`
	OccurredAt       time.Time                `db:"occurred_at" json:"occurred_at"`
	Description      string                   `db:"description" json:"description"`
	ActionsTaken     string                   `db:"actions_taken" json:"actions_taken"`
	Classification   OccurrenceClassification `db:"classification" json:"classification"`
	Severity         OccurrenceSeverity       `db:"severity" json:"severity"`
	Status           OccurrenceStatus         `db:"status" json:"status"`
	CreatedAt        time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time                `db:"updated_at" json:"updated_at"`
}

// OccurrenceDetail resolves relation labels.
type OccurrenceDetail struct {
	Occurrence
	CompanyName  string  `db:"company_name" json:"company_name"`
	SectorName   *string `db:"sector_name" json:"sector_name,omitempty"`
	EmployeeName *string `db:"employee_name" json:"employee_name,omitempty"`
	TypeName     *string `db:"type_name" json:"type_name,omitempty"`
}

// OccurrenceFilter encapsulates search parameters for listing occurrences.
type OccurrenceFilter struct {
	ListQuery
	CompanyID      string
	Status         OccurrenceStatus
	Classification OccurrenceClassification
}
