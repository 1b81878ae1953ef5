package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dom/mini-crm/internal/auth"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/repository"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

// RefreshSession is the result of a successful refresh-token lookup.
type RefreshSession struct {
	RecordID string
	User     *domain.User
}

// RefreshTokenService issues and checks opaque refresh tokens. Only the
// SHA-256 digest of a token ever reaches storage.
type RefreshTokenService struct {
	repo repository.RefreshTokenRepository
	ttl  time.Duration
	now  auth.Clock
}

func NewRefreshTokenService(repo repository.RefreshTokenRepository, ttl time.Duration, now auth.Clock) *RefreshTokenService {
	if now == nil {
		now = time.Now
	}
	return &RefreshTokenService{repo: repo, ttl: ttl, now: now}
}

// HashToken returns the lowercase hex SHA-256 digest stored for raw.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Generate returns a new 64-character hex secret. The secret cannot be
// recovered later.
func (s *RefreshTokenService) Generate(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	raw := hex.EncodeToString(buf)

	now := s.now()
	record := &domain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: HashToken(raw),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", err
	}
	return raw, nil
}

// Validate returns nil, nil when raw is unknown, expired, or belongs to a
// deleted user. Errors are reserved for storage failures.
func (s *RefreshTokenService) Validate(ctx context.Context, raw string) (*RefreshSession, error) {
	if raw == "" {
		return nil, nil
	}
	token, user, err := s.repo.FindActiveByHash(ctx, HashToken(raw), s.now())
	if errors.Is(err, domain.ErrRefreshInvalid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &RefreshSession{RecordID: token.ID, User: user}, nil
}

// Revoke deletes raw's record. Unknown tokens are not an error.
func (s *RefreshTokenService) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return s.repo.DeleteByHash(ctx, HashToken(raw))
}

func (s *RefreshTokenService) RevokeAll(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUserID(ctx, userID)
}

func (s *RefreshTokenService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func (s *RefreshTokenService) ListActive(ctx context.Context, userID int64) ([]*domain.RefreshToken, error) {
	return s.repo.ListActiveByUserID(ctx, userID, s.now())
}
