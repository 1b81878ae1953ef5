package middleware

import (
	"context"
	"net/http"

	"github.com/dom/mini-crm/internal/api/response"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/logger"
	"github.com/dom/mini-crm/internal/metrics"
	"github.com/dom/mini-crm/internal/service"
)

// TokenRefreshHeader carries a freshly minted access token when the one
// presented was close to expiry. Clients replace their stored token with it.
const TokenRefreshHeader = "X-Token-Refresh"

type contextKey string

const (
	SessionKey contextKey = "session"
)

// RequireAuth rejects the request with 401 unless it carries a valid bearer
// token for a live user.
func RequireAuth(sessions *service.SessionService, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if m != nil && domain.KindOf(err) == domain.KindAuthentication {
					m.AuthRejectionsTotal.WithLabelValues(domain.CodeOf(err)).Inc()
				}
				logger.FromContext(r.Context()).Debug("authentication rejected")
				response.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, withSession(w, r, session))
		})
	}
}

// OptionalAuth attaches the session when the request authenticates and
// passes anonymous or invalid requests through untouched.
func OptionalAuth(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessions.OptionalAuthenticate(r.Context(), r.Header.Get("Authorization"))
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, withSession(w, r, session))
		})
	}
}

func withSession(w http.ResponseWriter, r *http.Request, session *service.Session) *http.Request {
	if session.RotatedToken != "" {
		w.Header().Set(TokenRefreshHeader, session.RotatedToken)
	}
	ctx := context.WithValue(r.Context(), SessionKey, session)
	ctx = logger.WithContext(ctx, logger.WithUserID(logger.FromContext(ctx), session.User.ID))
	return r.WithContext(ctx)
}

func SessionFromContext(ctx context.Context) (*service.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*service.Session)
	return session, ok
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil, false
	}
	return session.User, true
}
