package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseworks/sst-backoffice-api/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("u1", "tech@example.com", "hash", "Tech", "TECHNICIAN", true, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, email, password_hash").WithArgs("tech@example.com").WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "tech@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, models.RoleTechnician, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT id, email, password_hash").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAccessToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO access_tokens").WillReturnResult(sqlmock.NewResult(0, 1))

	token := &models.AccessToken{UserID: "u1", DeviceName: "firefox", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateAccessToken(context.Background(), token))
	assert.NotEmpty(t, token.ID)
	assert.False(t, token.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRevokeAccessToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE access_tokens SET revoked_at").
		WithArgs("tok1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeAccessToken(context.Background(), "tok1", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
