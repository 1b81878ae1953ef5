package service

import (
	"github.com/dom/mini-crm/internal/auth"
	"github.com/dom/mini-crm/internal/config"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth      *AuthService
	Refresh   *RefreshTokenService
	Sessions  *SessionService
	Customers *CustomerService
	Tokens    *auth.TokenCodec
}

// NewServices wires every service around one token codec and clock. now may
// be nil for wall-clock time.
func NewServices(repos *repository.Repositories, cfg *config.Config, now auth.Clock, log *zap.Logger, m *metrics.Metrics) *Services {
	tokens := auth.NewTokenCodec(cfg, now)
	refresh := NewRefreshTokenService(repos.RefreshToken, cfg.RefreshTokenTTL, now)

	return &Services{
		Auth:      NewAuthService(repos.User, refresh, tokens),
		Refresh:   refresh,
		Sessions:  NewSessionService(repos.User, tokens, log, m),
		Customers: NewCustomerService(repos.Customer, now),
		Tokens:    tokens,
	}
}
