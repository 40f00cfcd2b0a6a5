package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockUserAdminRepo struct {
	users      map[string]*models.User
	emailTaken bool
	revoked    []string
	deleted    []string
}

func newMockUserAdminRepo() *mockUserAdminRepo {
	return &mockUserAdminRepo{users: map[string]*models.User{}}
}

func (m *mockUserAdminRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (m *mockUserAdminRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *mockUserAdminRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockUserAdminRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "u1"
	m.users[user.ID] = user
	return nil
}

func (m *mockUserAdminRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserAdminRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.users, id)
	return nil
}

func (m *mockUserAdminRepo) RevokeUserAccessTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func userRequest() UserRequest {
	return UserRequest{
		Email:    "Ana.Costa@example.com",
		FullName: "Ana Costa",
		Role:     models.RoleTechnician,
		Active:   true,
		Password: "s3cret-pass",
	}
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := newMockUserAdminRepo()
	svc := NewUserService(repo, NewValidator(), zap.NewNop())

	user, err := svc.Create(context.Background(), userRequest())
	require.NoError(t, err)
	assert.Equal(t, "ana.costa@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := newMockUserAdminRepo()
	repo.emailTaken = true
	svc := NewUserService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), userRequest())
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is already registered", v.Fields["email"])
}

func TestUserServiceCreateRequiresPassword(t *testing.T) {
	svc := NewUserService(newMockUserAdminRepo(), NewValidator(), zap.NewNop())

	req := userRequest()
	req.Password = ""
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is required", v.Fields["password"])
}

func TestUserServiceCreateInvalidRole(t *testing.T) {
	svc := NewUserService(newMockUserAdminRepo(), NewValidator(), zap.NewNop())

	req := userRequest()
	req.Role = "SUPERUSER"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "is invalid", v.Fields["role"])
}

func TestUserServiceUpdateDeactivationRevokesSessions(t *testing.T) {
	repo := newMockUserAdminRepo()
	repo.users["u1"] = &models.User{ID: "u1", Email: "ana.costa@example.com", FullName: "Ana Costa", Role: models.RoleTechnician, Active: true, PasswordHash: "hash"}
	svc := NewUserService(repo, NewValidator(), zap.NewNop())

	req := userRequest()
	req.Active = false
	req.Password = ""
	user, err := svc.Update(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, []string{"u1"}, repo.revoked)
}

func TestUserServiceUpdateNotFound(t *testing.T) {
	svc := NewUserService(newMockUserAdminRepo(), NewValidator(), zap.NewNop())

	_, err := svc.Update(context.Background(), "ghost", userRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteRevokesSessions(t *testing.T) {
	repo := newMockUserAdminRepo()
	svc := NewUserService(repo, NewValidator(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, repo.revoked)
	assert.Equal(t, []string{"u1"}, repo.deleted)
}
