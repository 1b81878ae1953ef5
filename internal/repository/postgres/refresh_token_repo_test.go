package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefreshToken(userID int64, hash string, expires time.Time) *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expires,
	}
}

func (s *repositorySuite) TestRefreshTokenFindActiveByHash() {
	t := s.T()
	users := s.users
	repo := s.tokens
	ctx := context.Background()

	now := testutil.Epoch
	owner, _ := testutil.NewUserBuilder().Build(t, users)
	deleted, _ := testutil.NewUserBuilder().Build(t, users)

	require.NoError(t, repo.Create(ctx, newRefreshToken(owner.ID, "live", now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(owner.ID, "boundary", now)))
	require.NoError(t, repo.Create(ctx, newRefreshToken(deleted.ID, "orphan", now.Add(time.Hour))))
	require.NoError(t, users.SoftDelete(ctx, deleted.ID))

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{name: "active token", hash: "live"},
		{name: "expires exactly now", hash: "boundary", wantErr: domain.ErrRefreshInvalid},
		{name: "owner soft-deleted", hash: "orphan", wantErr: domain.ErrRefreshInvalid},
		{name: "unknown hash", hash: "nope", wantErr: domain.ErrRefreshInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := repo.FindActiveByHash(ctx, tt.hash, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owner.ID, token.UserID)
			assert.Equal(t, owner.Email, user.Email)
		})
	}
}

func (s *repositorySuite) TestRefreshTokenRevocation() {
	t := s.T()
	users := s.users
	repo := s.tokens
	ctx := context.Background()

	now := testutil.Epoch
	owner, _ := testutil.NewUserBuilder().Build(t, users)
	other, _ := testutil.NewUserBuilder().Build(t, users)

	for _, hash := range []string{"a", "b"} {
		require.NoError(t, repo.Create(ctx, newRefreshToken(owner.ID, hash, now.Add(time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, newRefreshToken(other.ID, "c", now.Add(time.Hour))))

	active, err := repo.ListActiveByUserID(ctx, owner.ID, now)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	require.NoError(t, repo.DeleteByHash(ctx, "a"))
	require.NoError(t, repo.DeleteByHash(ctx, "a"), "deleting twice is not an error")

	_, _, err = repo.FindActiveByHash(ctx, "a", now)
	assert.ErrorIs(t, err, domain.ErrRefreshInvalid)

	require.NoError(t, repo.DeleteByUserID(ctx, owner.ID))
	active, err = repo.ListActiveByUserID(ctx, owner.ID, now)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, _, err = repo.FindActiveByHash(ctx, "c", now)
	assert.NoError(t, err, "other users keep their sessions")
}

func (s *repositorySuite) TestRefreshTokenDeleteExpired() {
	t := s.T()
	users := s.users
	repo := s.tokens
	ctx := context.Background()

	now := testutil.Epoch
	owner, _ := testutil.NewUserBuilder().Build(t, users)

	require.NoError(t, repo.Create(ctx, newRefreshToken(owner.ID, "old", now.Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, newRefreshToken(owner.ID, "edge", now)))
	require.NoError(t, repo.Create(ctx, newRefreshToken(owner.ID, "fresh", now.Add(time.Minute))))

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	active, err := repo.ListActiveByUserID(ctx, owner.ID, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].TokenHash)
}
