package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dom/mini-crm/internal/domain"
)

var errDuplicateHash = errors.New("duplicate token hash")

type refreshTokenRepository struct {
	s *store
}

func (r *refreshTokenRepository) Create(_ context.Context, token *domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tokens[token.TokenHash]; exists {
		return domain.NewStorageError("create refresh token", errDuplicateHash)
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = r.s.now()
	}
	stored := *token
	r.s.tokens[token.TokenHash] = &stored
	return nil
}

func (r *refreshTokenRepository) FindActiveByHash(_ context.Context, hash string, now time.Time) (*domain.RefreshToken, *domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	token, ok := r.s.tokens[hash]
	if !ok || !token.ExpiresAt.After(now) {
		return nil, nil, domain.ErrRefreshInvalid
	}
	user, ok := r.s.liveUser(token.UserID)
	if !ok {
		return nil, nil, domain.ErrRefreshInvalid
	}

	t, u := *token, *user
	return &t, &u, nil
}

func (r *refreshTokenRepository) ListActiveByUserID(_ context.Context, userID int64, now time.Time) ([]*domain.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.RefreshToken
	for _, token := range r.s.tokens {
		if token.UserID == userID && token.ExpiresAt.After(now) {
			t := *token
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *refreshTokenRepository) DeleteByHash(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.tokens, hash)
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for hash, token := range r.s.tokens {
		if token.UserID == userID {
			delete(r.s.tokens, hash)
		}
	}
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for hash, token := range r.s.tokens {
		if !token.ExpiresAt.After(now) {
			delete(r.s.tokens, hash)
			removed++
		}
	}
	return removed, nil
}
