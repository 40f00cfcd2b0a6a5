package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	CreateAccessToken(ctx context.Context, token *models.AccessToken) error
	FindAccessToken(ctx context.Context, id string) (*models.AccessToken, error)
	RevokeAccessToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserAccessTokens(ctx context.Context, userID string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret     string
	TokenExpiration time.Duration
	Issuer          string
}

// AuthService issues, checks and revokes bearer tokens. Every token carries a
// jti pointing at a persisted access_tokens row; revoking the row kills the
// token before its natural expiry. Redis, when available, caches the
// revocation lookup.
type AuthService struct {
	repo      authUserRepository
	redis     *redis.Client
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance. redisClient may be nil.
func NewAuthService(repo authUserRepository, redisClient *redis.Client, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, redis: redisClient, validator: validate, logger: logger, config: config}
}

// Login authenticates a user and issues a device-bound bearer token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, asFieldErrors(err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	issuedAt := time.Now().UTC()
	record := &models.AccessToken{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		DeviceName: req.DeviceName,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
		ExpiresAt:  issuedAt.Add(s.config.TokenExpiration),
		CreatedAt:  issuedAt,
	}
	if err := s.repo.CreateAccessToken(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist access token")
	}

	signed, err := s.signToken(user, record.ID, issuedAt, record.ExpiresAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("device", req.DeviceName))

	return &models.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(s.config.TokenExpiration.Seconds()),
		IssuedAt:  issuedAt,
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

// Logout revokes the token identified by the claims' jti.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil || claims.ID == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing token")
	}
	if err := s.repo.RevokeAccessToken(ctx, claims.ID, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke token")
	}
	s.dropCached(ctx, claims.ID)
	return nil
}

// CheckToken verifies the signature and the persisted token state, returning
// the authenticated user info.
func (s *AuthService) CheckToken(ctx context.Context, tokenString string) (*models.JWTClaims, *models.UserInfo, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkRevocation(ctx, claims.ID); err != nil {
		return nil, nil, err
	}
	return claims, &models.UserInfo{
		ID:       claims.UserID,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
	}, nil
}

// Me loads the fresh profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return &models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.Role}, nil
}

// ChangePassword changes the password and revokes every live session.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return asFieldErrors(err)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.NewFieldValidation("old_password", "does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(newHash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if err := s.repo.RevokeUserAccessTokens(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke sessions after password change", zap.Error(err))
	}
	return nil
}

// ParseToken validates the JWT signature and shape without touching storage.
func (s *AuthService) ParseToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func revocationKey(jti string) string {
	return "auth:token:" + jti
}

// checkRevocation consults the Redis cache first and falls back to the
// database, caching the verdict.
func (s *AuthService) checkRevocation(ctx context.Context, jti string) error {
	if jti == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing token id")
	}
	if s.redis != nil {
		state, err := s.redis.Get(ctx, revocationKey(jti)).Result()
		if err == nil {
			if state == "live" {
				return nil
			}
			return appErrors.Clone(appErrors.ErrUnauthorized, "token revoked")
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("token cache lookup failed", zap.Error(err))
		}
	}

	record, err := s.repo.FindAccessToken(ctx, jti)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "token not recognized")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check token")
	}
	now := time.Now().UTC()
	if !record.Live(now) {
		s.cacheVerdict(ctx, jti, "revoked", 5*time.Minute)
		return appErrors.Clone(appErrors.ErrUnauthorized, "token revoked or expired")
	}
	s.cacheVerdict(ctx, jti, "live", time.Until(record.ExpiresAt))
	return nil
}

func (s *AuthService) cacheVerdict(ctx context.Context, jti, state string, ttl time.Duration) {
	if s.redis == nil || ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, revocationKey(jti), state, ttl).Err(); err != nil {
		s.logger.Warn("token cache write failed", zap.Error(err))
	}
}

func (s *AuthService) dropCached(ctx context.Context, jti string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, revocationKey(jti)).Err(); err != nil {
		s.logger.Warn("token cache delete failed", zap.Error(err))
	}
}

func (s *AuthService) signToken(user *models.User, jti string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}
