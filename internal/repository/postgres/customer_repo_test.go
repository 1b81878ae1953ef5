package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *repositorySuite) TestCustomerOwnerScoping() {
	t := s.T()
	users := s.users
	repo := s.customers
	ctx := context.Background()

	ana, _ := testutil.NewUserBuilder().Build(t, users)
	bob, _ := testutil.NewUserBuilder().Build(t, users)

	customer := testutil.NewCustomerBuilder().
		WithName("Ayse").
		WithTags("vip", "istanbul").
		Build(t, repo, ana)

	t.Run("owner can read", func(t *testing.T) {
		got, err := repo.GetByIDAndUser(ctx, customer.ID, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ayse", got.Name)
		assert.Equal(t, []string{"vip", "istanbul"}, []string(got.Tags))
	})

	t.Run("other user sees nothing", func(t *testing.T) {
		_, err := repo.GetByIDAndUser(ctx, customer.ID, bob.ID)
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

		list, err := repo.ListByUser(ctx, bob.ID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, list)

		assert.ErrorIs(t, repo.SoftDelete(ctx, customer.ID, bob.ID), domain.ErrCustomerNotFound)
	})

	t.Run("soft delete hides the row", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, customer.ID, ana.ID))
		_, err := repo.GetByIDAndUser(ctx, customer.ID, ana.ID)
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func (s *repositorySuite) TestCustomerListByUser() {
	t := s.T()
	users := s.users
	repo := s.customers
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, users)
	var names []string
	for _, name := range []string{"first", "second", "third"} {
		testutil.NewCustomerBuilder().WithName(name).Build(t, repo, owner)
		names = append([]string{name}, names...)
	}

	tests := []struct {
		name   string
		limit  int
		offset int
		want   []string
	}{
		{name: "all newest first", want: names},
		{name: "first page", limit: 2, want: names[:2]},
		{name: "second page", limit: 2, offset: 2, want: names[2:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.ListByUser(ctx, owner.ID, tt.limit, tt.offset)
			require.NoError(t, err)

			var got []string
			for _, c := range list {
				got = append(got, c.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func (s *repositorySuite) TestCustomerUpdateAndFollowUps() {
	t := s.T()
	users := s.users
	repo := s.customers
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, users)
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	due := testutil.NewCustomerBuilder().WithName("due").WithFollowUp(today).Build(t, repo, owner)
	testutil.NewCustomerBuilder().WithName("later").WithFollowUp(today.AddDate(0, 0, 1)).Build(t, repo, owner)
	testutil.NewCustomerBuilder().WithName("none").Build(t, repo, owner)

	list, err := repo.ListFollowUps(ctx, owner.ID, today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "due", list[0].Name)
	assert.Equal(t, "2026-03-01", list[0].FollowUpDay())

	// Clearing the date drops the customer from the list.
	due.FollowUpDate = nil
	due.Notes = "called"
	require.NoError(t, repo.Update(ctx, due))

	list, err = repo.ListFollowUps(ctx, owner.ID, today)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := repo.GetByIDAndUser(ctx, due.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "called", got.Notes)
	assert.Nil(t, got.FollowUpDate)
}

func (s *repositorySuite) TestCustomerTagCounts() {
	t := s.T()
	users := s.users
	repo := s.customers
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, users)
	testutil.NewCustomerBuilder().WithTags("vip", "lead").Build(t, repo, owner)
	testutil.NewCustomerBuilder().WithTags("vip").Build(t, repo, owner)
	testutil.NewCustomerBuilder().Build(t, repo, owner)

	counts, err := repo.TagCounts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{
		{Tag: "vip", Count: 2},
		{Tag: "lead", Count: 1},
	}, counts)

	s.db.Truncate(t)
	counts, err = repo.TagCounts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
