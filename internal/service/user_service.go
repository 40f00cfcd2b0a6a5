package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hseworks/sst-backoffice-api/internal/models"
	appErrors "github.com/hseworks/sst-backoffice-api/pkg/errors"
)

type userAdminRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	RevokeUserAccessTokens(ctx context.Context, userID string) error
}

// UserRequest holds the payload for creating and updating backoffice users.
// Password is required on create; on update an empty password keeps the
// current one.
type UserRequest struct {
	Email    string          `json:"email" validate:"required,email,max=160"`
	FullName string          `json:"full_name" validate:"required,max=160"`
	Role     models.UserRole `json:"role" validate:"required"`
	Active   bool            `json:"active"`
	Password string          `json:"password" validate:"omitempty,min=8"`
}

// UserService handles backoffice operator administration.
type UserService struct {
	repo      userAdminRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo userAdminRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns users and the total count.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	filter.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *UserService) checkRequest(ctx context.Context, req UserRequest, excludeID string) error {
	if err := s.validator.Struct(req); err != nil {
		return asFieldErrors(err)
	}
	if !req.Role.Valid() {
		return appErrors.NewFieldValidation("role", "is invalid")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return appErrors.NewFieldValidation("email", "is already registered")
	}
	return nil
}

// Create registers a new backoffice user with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, req UserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.checkRequest(ctx, req, ""); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, appErrors.NewFieldValidation("password", "is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       req.Active,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("user created", zap.String("id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update modifies an existing user. Deactivating a user revokes every live
// session.
func (s *UserService) Update(ctx context.Context, id string, req UserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if err := s.checkRequest(ctx, req, id); err != nil {
		return nil, err
	}
	deactivated := user.Active && !req.Active
	user.Email = req.Email
	user.FullName = req.FullName
	user.Role = req.Role
	user.Active = req.Active
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	if deactivated || req.Password != "" {
		if err := s.repo.RevokeUserAccessTokens(ctx, id); err != nil {
			s.logger.Warn("failed to revoke user sessions", zap.String("id", id), zap.Error(err))
		}
	}
	return user, nil
}

// Delete removes a user and revokes every live session. Deleting an absent
// user succeeds.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.RevokeUserAccessTokens(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke user sessions")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}
