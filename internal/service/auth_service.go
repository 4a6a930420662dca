package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/auth"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/config"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate changes the caller's own account. Nil fields are left alone.
type ProfileUpdate struct {
	Name            *string
	CurrentPassword string
	NewPassword     *string
}

// Session is an issued access token together with its account.
type Session struct {
	User  *domain.User
	Token string
	Meta  domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	user, err := s.createUser(ctx, input, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateAdmin provisions a consultant account. It is only reachable from the CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email, err := normalizeEmail(input.Email)
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if err != nil {
		details["email"] = "invalid"
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	if err != nil {
		return nil, apperrors.NewWriteFailed("create account", err)
	}
	return user, nil
}

// Login authenticates either portal's account. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, storeUnavailable("load account", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// UpdateProfile renames the account or changes its password.
func (s *AuthService) UpdateProfile(ctx context.Context, actor domain.Actor, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("account", nil)
	}
	if err != nil {
		return nil, storeUnavailable("load account", err)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("invalid profile", map[string]any{"name": "required"})
		}
		user.Name = name
	}
	if update.NewPassword != nil {
		if err := auth.ComparePassword(user.PasswordHash, update.CurrentPassword); err != nil {
			return nil, apperrors.NewUnauthorized("current password is incorrect")
		}
		if err := auth.ValidatePassword(*update.NewPassword); err != nil {
			return nil, apperrors.NewValidationError("invalid profile", map[string]any{"new_password": err.Error()})
		}
		hash, err := auth.HashPassword(*update.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NewWriteFailed("update account", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, meta, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, Meta: meta}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}
