package models

import "time"

// Employee represents a worker tracked by the backoffice.
type Employee struct {
	ID           string     `db:"id" json:"id"`
	FullName     string     `db:"full_name" json:"full_name"`
	CPF          string     `db:"cpf" json:"cpf"`
	RG           string     `db:"rg" json:"rg"`
	BirthDate    time.Time  `db:"birth_date" json:"birth_date"`
	Phone        string     `db:"phone" json:"phone"`
	Email        string     `db:"email" json:"email"`
	CNHNumber    string     `db:"cnh_number" json:"cnh_number"`
	CNHCategory  string     `db:"cnh_category" json:"cnh_category"`
	CNHExpiresAt *time.Time `db:"cnh_expires_at" json:"cnh_expires_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Assignment is an employee's time-bounded placement into a
// company/sector/job-title combination.
type Assignment struct {
	ID         string     `db:"id" json:"id"`
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	CompanyID  string     `db:"company_id" json:"company_id"`
	SectorID   string     `db:"sector_id" json:"sector_id"`
	JobTitleID string     `db:"job_title_id" json:"job_title_id"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// AssignmentDetail resolves the relation labels the tables render.
type AssignmentDetail struct {
	Assignment
	CompanyName  string `db:"company_name" json:"company_name"`
	SectorName   string `db:"sector_name" json:"sector_name"`
	JobTitleName string `db:"job_title_name" json:"job_title_name"`
}

// EmployeeDetail carries the employee with current assignments.
type EmployeeDetail struct {
	Employee
	Assignments []AssignmentDetail `db:"-" json:"assignments"`
}

// EmployeeFilter encapsulates search parameters for listing employees.
type EmployeeFilter struct {
	ListQuery
	CompanyID string
}
