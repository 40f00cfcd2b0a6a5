package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

var sectorsDef = models.CatalogDefinition{Slug: "sectors", Table: "sectors", Label: "sector"}

func TestCatalogRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
		AddRow("s1", "Produção", time.Now(), time.Now()).
		AddRow("s2", "Manutenção", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, created_at, updated_at FROM sectors").WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	filter := models.ListQuery{}
	filter.Normalize()
	entries, total, err := repo.List(context.Background(), sectorsDef, filter)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("INSERT INTO sectors").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.CatalogEntry{Name: "Produção"}
	require.NoError(t, repo.Create(context.Background(), sectorsDef, entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("SELECT 1 FROM sectors").
		WithArgs("Produção").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), sectorsDef, "Produção", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec("DELETE FROM sectors").WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), sectorsDef, "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
