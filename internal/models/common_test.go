package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, PerPage: 33}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPerPage, q.PerPage)

	q = ListQuery{Page: 3, PerPage: 50}
	q.Normalize()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 50, q.PerPage)

	q = ListQuery{Page: -4, PerPage: -1}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPerPage, q.PerPage)
}

func TestListQueryOffset(t *testing.T) {
	q := ListQuery{Page: 2, PerPage: 25}
	assert.Equal(t, 25, q.Offset())

	q = ListQuery{Page: 1, PerPage: 10}
	assert.Equal(t, 0, q.Offset())

	q = ListQuery{Page: 0, PerPage: 10}
	assert.Equal(t, 0, q.Offset())
}

func TestCatalogBySlug(t *testing.T) {
	def, ok := CatalogBySlug("sectors")
	assert.True(t, ok)
	assert.Equal(t, "sectors", def.Table)

	_, ok = CatalogBySlug("unknown")
	assert.False(t, ok)
}
