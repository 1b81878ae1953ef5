package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/service"
	"github.com/dom/mini-crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func tagsPtr(tags ...string) *[]string { return &tags }

func TestCustomerService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   service.CustomerInput
		wantMsg string
	}{
		{name: "valid", input: service.CustomerInput{Name: "Mehmet", Phone: "+90 (532) 123-45-67"}},
		{name: "missing phone", input: service.CustomerInput{Name: "Mehmet"}, wantMsg: "Name and phone are required"},
		{name: "missing name", input: service.CustomerInput{Phone: "555"}, wantMsg: "Name and phone are required"},
		{name: "letters in phone", input: service.CustomerInput{Name: "Mehmet", Phone: "555-CALL"}, wantMsg: "Invalid phone number format"},
		{name: "bad follow-up date", input: service.CustomerInput{Name: "Mehmet", Phone: "555", FollowUpDate: strPtr("03/01/2026")}, wantMsg: "Invalid follow-up date format (expected YYYY-MM-DD)"},
		{name: "empty follow-up date", input: service.CustomerInput{Name: "Mehmet", Phone: "555", FollowUpDate: strPtr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner, _ := testutil.NewUserBuilder().Build(t, f.repos.User)

			customer, err := f.services.Customers.Create(context.Background(), owner.ID, tt.input)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owner.ID, customer.UserID)
			assert.NotNil(t, customer.Tags)
		})
	}
}

func TestCustomerService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, f.repos.User)
	other, _ := testutil.NewUserBuilder().Build(t, f.repos.User)

	created, err := f.services.Customers.Create(ctx, owner.ID, service.CustomerInput{
		Name:         "Mehmet",
		Phone:        "555",
		Tags:         tagsPtr(" vip ", "new", "vip", ""),
		Notes:        strPtr("met at fair"),
		FollowUpDate: strPtr("2026-03-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "new"}, []string(created.Tags))
	assert.Equal(t, "2026-03-02", created.FollowUpDay())

	updated, err := f.services.Customers.Update(ctx, owner.ID, created.ID, service.CustomerInput{Name: "Mehmet Y.", Phone: "556"})
	require.NoError(t, err)
	assert.Equal(t, "Mehmet Y.", updated.Name)
	assert.Equal(t, "met at fair", updated.Notes, "omitted fields keep their value")
	assert.Equal(t, "2026-03-02", updated.FollowUpDay())

	updated, err = f.services.Customers.Update(ctx, owner.ID, created.ID, service.CustomerInput{Name: "Mehmet Y.", Phone: "556", FollowUpDate: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.FollowUpDay())

	_, err = f.services.Customers.Update(ctx, other.ID, created.ID, service.CustomerInput{Name: "x", Phone: "1"})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	assert.ErrorIs(t, f.services.Customers.Delete(ctx, other.ID, created.ID), domain.ErrCustomerNotFound)
	require.NoError(t, f.services.Customers.Delete(ctx, owner.ID, created.ID))
	_, err = f.services.Customers.Get(ctx, owner.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCustomerService_FollowUps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, f.repos.User)

	today := testutil.Epoch
	tomorrow := today.Add(24 * time.Hour)
	testutil.NewCustomerBuilder().WithName("Today").WithFollowUp(today).Build(t, f.repos.Customer, owner)
	testutil.NewCustomerBuilder().WithName("Tomorrow").WithFollowUp(tomorrow).Build(t, f.repos.Customer, owner)
	testutil.NewCustomerBuilder().WithName("Never").Build(t, f.repos.Customer, owner)

	due, day, err := f.services.Customers.FollowUps(ctx, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", day)
	require.Len(t, due, 1)
	assert.Equal(t, "Today", due[0].Name)

	due, day, err = f.services.Customers.FollowUps(ctx, owner.ID, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", day)
	require.Len(t, due, 1)
	assert.Equal(t, "Tomorrow", due[0].Name)

	_, _, err = f.services.Customers.FollowUps(ctx, owner.ID, "tomorrow")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCustomerService_Tags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, _ := testutil.NewUserBuilder().Build(t, f.repos.User)
	other, _ := testutil.NewUserBuilder().Build(t, f.repos.User)

	testutil.NewCustomerBuilder().WithTags("vip", "retail").Build(t, f.repos.Customer, owner)
	testutil.NewCustomerBuilder().WithTags("vip", "wholesale").Build(t, f.repos.Customer, owner)
	testutil.NewCustomerBuilder().WithTags("vip").Build(t, f.repos.Customer, owner)
	testutil.NewCustomerBuilder().WithTags("secret").Build(t, f.repos.Customer, other)

	tags, err := f.services.Customers.Tags(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"retail", "vip", "wholesale"}, tags)

	popular, err := f.services.Customers.PopularTags(ctx, owner.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{{Tag: "vip", Count: 3}, {Tag: "retail", Count: 1}}, popular)

	popular, err = f.services.Customers.PopularTags(ctx, owner.ID, 0)
	require.NoError(t, err)
	assert.Len(t, popular, 3)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, service.NormalizeTags([]string{" a", "b ", "a", "  "}))
	assert.Equal(t, []string{}, service.NormalizeTags(nil))
}
