package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCompanyRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "trade_name", "cnpj", "address", "city", "state", "company_group_id", "company_type_id", "created_at", "updated_at", "group_name", "type_name"}).
		AddRow("c1", "Acme", "Acme SA", "11444777000161", "Rua A", "Sao Paulo", "SP", nil, nil, time.Now(), time.Now(), nil, nil)
	mock.ExpectQuery("FROM companies c LEFT JOIN company_groups").WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	filter := models.CompanyFilter{}
	filter.Normalize()
	companies, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryListSearchArgs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectQuery("FROM companies c LEFT JOIN company_groups").
		WithArgs("%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "trade_name", "cnpj", "address", "city", "state", "company_group_id", "company_type_id", "created_at", "updated_at", "group_name", "type_name"}))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	filter := models.CompanyFilter{}
	filter.Search = "Acme"
	filter.Normalize()
	_, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO companies").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM company_sectors").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO company_sectors").WithArgs(sqlmock.AnyArg(), "s1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	company := &models.Company{Name: "Acme", CNPJ: "11444777000161"}
	err := repo.Create(context.Background(), company, []string{"s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, company.ID)
	assert.False(t, company.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM company_sectors").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM companies").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryExistsByCNPJ(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCompanyRepository(db)

	mock.ExpectQuery("SELECT 1 FROM companies WHERE cnpj").
		WithArgs("11444777000161").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByCNPJ(context.Background(), "11444777000161", "")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery("SELECT 1 FROM companies WHERE cnpj").
		WithArgs("11444777000161", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err = repo.ExistsByCNPJ(context.Background(), "11444777000161", "c1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
