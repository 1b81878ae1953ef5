package service

import (
	"context"
	"errors"

	"github.com/dom/mini-crm/internal/auth"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/repository"
	"go.uber.org/zap"
)

// Session is an authenticated request. RotatedToken is set when the
// presented token was close to expiry and a replacement was minted.
type Session struct {
	User         *domain.User
	Token        string
	RotatedToken string
}

// SessionService is the request-time gate behind the auth middleware.
type SessionService struct {
	users   repository.UserRepository
	tokens  *auth.TokenCodec
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewSessionService(users repository.UserRepository, tokens *auth.TokenCodec, log *zap.Logger, m *metrics.Metrics) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		users:   users,
		tokens:  tokens,
		log:     log.With(zap.String("component", "session")),
		metrics: m,
	}
}

// Authenticate resolves an Authorization header value to a live user. Every
// failure is a KindAuthentication error carrying token_missing, token_expired,
// token_invalid or user_not_found, except storage failures which pass through.
func (s *SessionService) Authenticate(ctx context.Context, header string) (*Session, error) {
	token, ok := auth.ExtractBearer(header)
	if !ok {
		return nil, domain.ErrTokenMissing
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionUserGone
		}
		return nil, err
	}

	session := &Session{User: user, Token: token}
	if s.tokens.ExpiringSoon(token) {
		session.RotatedToken = s.rotate(user)
	}
	return session, nil
}

// OptionalAuthenticate never fails; it returns nil for anonymous or invalid
// requests.
func (s *SessionService) OptionalAuthenticate(ctx context.Context, header string) *Session {
	if header == "" {
		return nil
	}
	session, err := s.Authenticate(ctx, header)
	if err != nil {
		if domain.KindOf(err) == domain.KindStorage {
			s.log.Error("optional authentication lookup failed", zap.Error(err))
		}
		return nil
	}
	return session
}

// rotate is best-effort: a failure is logged and the request continues with
// the old token.
func (s *SessionService) rotate(user *domain.User) string {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Warn("token rotation failed", zap.Int64("user_id", user.ID), zap.Error(err))
		s.countRotation("error")
		return ""
	}
	s.countRotation("success")
	return token
}

func (s *SessionService) countRotation(status string) {
	if s.metrics != nil {
		s.metrics.TokenRotationsTotal.WithLabelValues(status).Inc()
	}
}
