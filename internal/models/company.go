package models

import "time"

// Company represents a registered employer.
type Company struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	TradeName      string    `db:"trade_name" json:"trade_name"`
	CNPJ           string    `db:"cnpj" json:"cnpj"`
	Address        string    `db:"address" json:"address"`
	City           string    `db:"city" json:"city"`
	State          string    `db:"state" json:"state"`
	CompanyGroupID *string   `db:"company_group_id" json:"company_group_id,omitempty"`
	CompanyTypeID  *string   `db:"company_type_id" json:"company_type_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CompanyDetail carries the company with resolved relation labels.
type CompanyDetail struct {
	Company
	GroupName *string        `db:"group_name" json:"group_name,omitempty"`
	TypeName  *string        `db:"type_name" json:"type_name,omitempty"`
	Sectors   []CatalogEntry `db:"-" json:"sectors"`
}

// CompanyFilter encapsulates search parameters for listing companies.
type CompanyFilter struct {
	ListQuery
	CompanyGroupID string
	CompanyTypeID  string
}
