package auth

import (
	"errors"
	"time"

	"github.com/dom/mini-crm/internal/config"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Clock supplies the current time. Production uses time.Now.
type Clock func() time.Time

// Claims is the access-token payload. iss and aud are plain strings on the
// wire.
type Claims struct {
	UserID    int64            `json:"user_id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
	Issuer    string           `json:"iss,omitempty"`
	Audience  string           `json:"aud,omitempty"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return c.Issuer, nil }
func (c Claims) GetSubject() (string, error)                  { return "", nil }

func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}

// TokenCodec mints and verifies HS256 access tokens.
type TokenCodec struct {
	secret        []byte
	issuer        string
	audience      string
	ttl           time.Duration
	refreshWindow time.Duration
	strict        bool
	now           Clock
}

func NewTokenCodec(cfg *config.Config, now Clock) *TokenCodec {
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{
		secret:        []byte(cfg.JWTSecret),
		issuer:        cfg.AppName,
		audience:      cfg.AppURL,
		ttl:           cfg.AccessTokenTTL,
		refreshWindow: cfg.TokenRefreshWindow,
		strict:        cfg.JWTStrictClaims,
		now:           now,
	}
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

func (c *TokenCodec) Issue(user *domain.User) (string, error) {
	issuedAt := c.now().Truncate(time.Second)
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
		Issuer:    c.issuer,
		Audience:  c.audience,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies the signature and expiry. A token whose exp equals the
// current second is already expired. Returned errors carry only a code and
// a generic message.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.strict {
		options = append(options, jwt.WithIssuer(c.issuer), jwt.WithAudience(c.audience))
	}

	claims := &Claims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authError(domain.ErrTokenExpired, err)
		}
		return nil, authError(domain.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, authError(domain.ErrTokenInvalid, nil)
	}
	if claims.UserID <= 0 || claims.IssuedAt == nil || claims.Issuer == "" || claims.Audience == "" {
		return nil, authError(domain.ErrTokenInvalid, errors.New("missing required claims"))
	}

	return claims, nil
}

// ExpiringSoon reports whether a valid token has at most the refresh window
// left. Tokens that fail to decode are never "expiring soon".
func (c *TokenCodec) ExpiringSoon(tokenString string) bool {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(c.now()) <= c.refreshWindow
}

func authError(sentinel *domain.Error, cause error) error {
	e := *sentinel
	e.Err = cause
	return &e
}
