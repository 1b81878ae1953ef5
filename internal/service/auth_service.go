package service

import (
	"context"
	"errors"

	"github.com/dom/mini-crm/internal/auth"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/repository"
)

type AuthService struct {
	users   repository.UserRepository
	refresh *RefreshTokenService
	tokens  *auth.TokenCodec
}

func NewAuthService(users repository.UserRepository, refresh *RefreshTokenService, tokens *auth.TokenCodec) *AuthService {
	return &AuthService{
		users:   users,
		refresh: refresh,
		tokens:  tokens,
	}
}

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// LogoutInput revokes RefreshToken when set. All revokes every refresh token
// of UserID and is ignored for anonymous callers (UserID 0).
type LogoutInput struct {
	RefreshToken string
	UserID       int64
	All          bool
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := registerMessages.check(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong
// password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := loginMessages.check(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user)
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refresh.Generate(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself stays valid until it expires or is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.NewValidationError("Refresh token is required")
	}

	session, err := s.refresh.Validate(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", domain.ErrRefreshInvalid
	}

	user, err := s.users.GetByID(ctx, session.User.ID)
	if err != nil {
		return "", err
	}

	return s.tokens.Issue(user)
}

func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.All && input.UserID != 0 {
		return s.refresh.RevokeAll(ctx, input.UserID)
	}
	return s.refresh.Revoke(ctx, input.RefreshToken)
}

func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) ActiveSessions(ctx context.Context, userID int64) ([]*domain.RefreshToken, error) {
	return s.refresh.ListActive(ctx, userID)
}

// IssueToken mints a fresh access token for an already authenticated user.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	return s.tokens.Issue(user)
}
