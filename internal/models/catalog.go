package models

import "time"

// CatalogEntry is the shared shape of the name-only lookup resources
// (company groups, company types, sectors, job titles, brands, event types,
// occurrence types, document issuers). One parameterized stack serves all of
// them instead of near-identical copies per resource.
type CatalogEntry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CatalogDefinition binds a catalog resource slug to its table.
type CatalogDefinition struct {
	Slug  string
	Table string
	Label string
}

// Catalogs enumerates every lookup resource the API serves.
var Catalogs = []CatalogDefinition{
	{Slug: "company-groups", Table: "company_groups", Label: "company group"},
	{Slug: "company-types", Table: "company_types", Label: "company type"},
	{Slug: "sectors", Table: "sectors", Label: "sector"},
	{Slug: "job-titles", Table: "job_titles", Label: "job title"},
	{Slug: "brands", Table: "brands", Label: "brand"},
	{Slug: "event-types", Table: "event_types", Label: "event type"},
	{Slug: "occurrence-types", Table: "occurrence_types", Label: "occurrence type"},
	{Slug: "document-issuers", Table: "document_issuers", Label: "document issuer"},
}

// CatalogBySlug resolves a definition or returns false.
func CatalogBySlug(slug string) (CatalogDefinition, bool) {
	for _, def := range Catalogs {
		if def.Slug == slug {
			return def, true
		}
	}
	return CatalogDefinition{}, false
}
