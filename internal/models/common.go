package models

// PerPageOptions are the page sizes the backoffice tables offer.
var PerPageOptions = []int{10, 25, 50, 100}

// DefaultPerPage is used when the requested page size is not offered.
const DefaultPerPage = 25

// ListQuery captures the query parameters shared by every list endpoint.
type ListQuery struct {
	Search    string
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
}

// Normalize clamps page and per_page into the supported range.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	allowed := false
	for _, opt := range PerPageOptions {
		if q.PerPage == opt {
			allowed = true
			break
		}
	}
	if !allowed {
		q.PerPage = DefaultPerPage
	}
}

// Offset returns the LIMIT/OFFSET offset for the normalized query.
func (q ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.PerPage
}
