package models

import "time"

// Event is a training/safety event with a participant roster.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	EventTypeID *string   `db:"event_type_id" json:"event_type_id,omitempty"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	Location    string    `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EventParticipant is one roster row. Certificate numbers are unique within
// the event.
type EventParticipant struct {
	ID                string `db:"id" json:"id"`
	EventID           string `db:"event_id" json:"event_id"`
	EmployeeID        string `db:"employee_id" json:"employee_id"`
	CertificateNumber string `db:"certificate_number" json:"certificate_number"`
	Present           bool   `db:"present" json:"present"`
	Evaluation        string `db:"evaluation" json:"evaluation"`
}

// EventParticipantDetail resolves the employee label.
type EventParticipantDetail struct {
	EventParticipant
	EmployeeName string `db:"employee_name" json:"employee_name"`
}

// EventDetail resolves the type label and the roster.
type EventDetail struct {
	Event
	TypeName     *string                  `db:"type_name" json:"type_name,omitempty"`
	Participants []EventParticipantDetail `db:"-" json:"participants"`
}

// EventFilter encapsulates search parameters for listing events.
type EventFilter struct {
	ListQuery
	EventTypeID string
}
