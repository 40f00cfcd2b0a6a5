package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type mockUserRepo struct {
	user             *models.User
	findByEmailErr   error
	tokens           map[string]*models.AccessToken
	lastLoginUpdated bool
	passwordUpdated  string
	allRevoked       bool
}

func newMockUserRepo(user *models.User) *mockUserRepo {
	return &mockUserRepo{user: user, tokens: map[string]*models.AccessToken{}}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwordUpdated = passwordHash
	return nil
}

func (m *mockUserRepo) CreateAccessToken(ctx context.Context, token *models.AccessToken) error {
	m.tokens[token.ID] = token
	return nil
}

func (m *mockUserRepo) FindAccessToken(ctx context.Context, id string) (*models.AccessToken, error) {
	token, ok := m.tokens[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return token, nil
}

func (m *mockUserRepo) RevokeAccessToken(ctx context.Context, id string, revokedAt time.Time) error {
	if token, ok := m.tokens[id]; ok && token.RevokedAt == nil {
		token.RevokedAt = &revokedAt
	}
	return nil
}

func (m *mockUserRepo) RevokeUserAccessTokens(ctx context.Context, userID string) error {
	m.allRevoked = true
	now := time.Now().UTC()
	for _, token := range m.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func testAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, nil, NewValidator(), zap.NewNop(), AuthConfig{
		TokenSecret:     "secret",
		TokenExpiration: time.Hour,
		Issuer:          "test",
	})
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: "u1", Email: "tech@example.com", PasswordHash: string(hash), FullName: "Tech", Role: models.RoleTechnician, Active: true}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockUserRepo(activeUser(t))
	svc := testAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "tech@example.com", Password: "password", DeviceName: "firefox"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "u1", res.User.ID)
	assert.True(t, repo.lastLoginUpdated)
	assert.Len(t, repo.tokens, 1)
	for _, token := range repo.tokens {
		assert.Equal(t, "firefox", token.DeviceName)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo(activeUser(t))
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tech@example.com", Password: "nope", DeviceName: "firefox"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := newMockUserRepo(activeUser(t))
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password", DeviceName: "firefox"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := testAuthService(newMockUserRepo(user))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tech@example.com", Password: "password", DeviceName: "firefox"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRequiresDeviceName(t *testing.T) {
	svc := testAuthService(newMockUserRepo(activeUser(t)))

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tech@example.com", Password: "password"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "device_name")
}

func TestAuthServiceCheckTokenAndLogout(t *testing.T) {
	repo := newMockUserRepo(activeUser(t))
	svc := testAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "tech@example.com", Password: "password", DeviceName: "firefox"})
	require.NoError(t, err)

	claims, user, err := svc.CheckToken(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "tech@example.com", user.Email)

	require.NoError(t, svc.Logout(context.Background(), claims))

	_, _, err = svc.CheckToken(context.Background(), res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceCheckTokenGarbage(t *testing.T) {
	svc := testAuthService(newMockUserRepo(activeUser(t)))

	_, _, err := svc.CheckToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	svc := testAuthService(newMockUserRepo(activeUser(t)))

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newsecret"})
	require.Error(t, err)
	v, ok := appErrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "old_password")
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := newMockUserRepo(activeUser(t))
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tech@example.com", Password: "password", DeviceName: "firefox"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "password", NewPassword: "newsecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordUpdated)
	assert.True(t, repo.allRevoked)
	for _, token := range repo.tokens {
		assert.NotNil(t, token.RevokedAt)
	}
}
