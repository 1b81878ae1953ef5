package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *repositorySuite) TestUserCreate() {
	t := s.T()
	repo := s.users
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: &domain.User{
				Name:         "Ana",
				Email:        "ana@example.com",
				PasswordHash: "hashedpassword",
			},
		},
		{
			name: "duplicate email",
			user: &domain.User{
				Name:         "Ana Again",
				Email:        "ana@example.com", // Same as above
				PasswordHash: "hashedpassword2",
			},
			wantErr: domain.ErrEmailExists,
		},
		{
			name: "email differing only in case",
			user: &domain.User{
				Name:         "ANA",
				Email:        "ANA@example.com",
				PasswordHash: "hashedpassword3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func (s *repositorySuite) TestUserLookups() {
	t := s.T()
	repo := s.users
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("lookup@example.com").
		Build(t, repo)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, user.ID+1000)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func (s *repositorySuite) TestUserSoftDelete() {
	t := s.T()
	repo := s.users
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("gone@example.com").
		Build(t, repo)

	require.NoError(t, repo.SoftDelete(ctx, user.ID))

	_, err := repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// The row still holds the unique index.
	err = repo.Create(ctx, &domain.User{Name: "Again", Email: "gone@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	assert.ErrorIs(t, repo.SoftDelete(ctx, user.ID), domain.ErrUserNotFound)
}
