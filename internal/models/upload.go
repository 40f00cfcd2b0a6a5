package models

import "time"

// UploadStatus tracks the review state of a document upload. The values are
// the Portuguese labels the backoffice renders.
type UploadStatus string

const (
	UploadStatusPending  UploadStatus = "pendente"
	UploadStatusSent     UploadStatus = "enviado"
	UploadStatusApproved UploadStatus = "aprovado"
	UploadStatusRejected UploadStatus = "rejeitado"
)

// Valid reports whether the status is one of the known states.
func (s UploadStatus) Valid() bool {
	switch s {
	case UploadStatusPending, UploadStatusSent, UploadStatusApproved, UploadStatusRejected:
		return true
	}
	return false
}

// UploadSubject identifies the entity an upload is attached to.
type UploadSubject string

const (
	SubjectCompany     UploadSubject = "company"
	SubjectEmployee    UploadSubject = "employee"
	SubjectEvent       UploadSubject = "event"
	SubjectEpiDelivery UploadSubject = "epi_delivery"
	SubjectMedicalExam UploadSubject = "medical_exam"
	SubjectOccurrence  UploadSubject = "occurrence"
)

// Valid reports whether the subject type is known.
func (s UploadSubject) Valid() bool {
	switch s {
	case SubjectCompany, SubjectEmployee, SubjectEvent, SubjectEpiDelivery, SubjectMedicalExam, SubjectOccurrence:
		return true
	}
	return false
}

// Upload is a stored file attachment bound to one subject entity and,
// optionally, one document version. Exactly one file backs each upload; a
// re-upload replaces the stored blob.
type Upload struct {
	ID                string        `db:"id" json:"id"`
	SubjectType       UploadSubject `db:"subject_type" json:"subject_type"`
	SubjectID         string        `db:"subject_id" json:"subject_id"`
	DocumentVersionID *string       `db:"document_version_id" json:"document_version_id,omitempty"`
	Status            UploadStatus  `db:"status" json:"status"`
	IssueDate         *time.Time    `db:"issue_date" json:"issue_date,omitempty"`
	DueDate           *time.Time    `db:"due_date" json:"due_date,omitempty"`
	FileName          string        `db:"file_name" json:"file_name"`
	FilePath          string        `db:"file_path" json:"-"`
	MimeType          string        `db:"mime_type" json:"mime_type"`
	SizeBytes         int64         `db:"size_bytes" json:"size_bytes"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// UploadDetail adds the signed view URL clients embed in previews.
type UploadDetail struct {
	Upload
	FileURL string `db:"-" json:"file_url"`
}

// UploadFilter encapsulates search parameters for listing uploads.
type UploadFilter struct {
	ListQuery
	SubjectType UploadSubject
	SubjectID   string
	Status      UploadStatus
}
