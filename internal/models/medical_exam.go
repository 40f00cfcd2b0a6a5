package models

import "time"

// ExamType enumerates the occupational exam kinds (NR-7 vocabulary).
type ExamType string

const (
	ExamAdmission    ExamType = "admissional"
	ExamPeriodic     ExamType = "periodico"
	ExamReturnToWork ExamType = "retorno_ao_trabalho"
	ExamRoleChange   ExamType = "mudanca_de_funcao"
	ExamDismissal    ExamType = "demissional"
)

// Valid reports whether the exam type is known.
func (t ExamType) Valid() bool {
	switch t {
	case ExamAdmission, ExamPeriodic, ExamReturnToWork, ExamRoleChange, ExamDismissal:
		return true
	}
	return false
}

// MedicalExam records an occupational health exam for an employee.
type MedicalExam struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	ExamType   ExamType  `db:"exam_type" json:"exam_type"`
	ExamDate   time.Time `db:"exam_date" json:"exam_date"`
	Fit        bool      `db:"fit" json:"fit"`
	CIDCode    string    `db:"cid_code" json:"cid_code"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// MedicalExamDetail resolves the employee label and attachment list.
// Attachments live independently of the exam fields.
type MedicalExamDetail struct {
	MedicalExam
	EmployeeName string         `db:"employee_name" json:"employee_name"`
	Attachments  []UploadDetail `db:"-" json:"attachments"`
}

// MedicalExamFilter encapsulates search parameters for listing exams.
type MedicalExamFilter struct {
	ListQuery
	EmployeeID string
	ExamType   ExamType
}
