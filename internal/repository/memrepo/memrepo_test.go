package memrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localkart/homeservices-api/internal/models"
	"github.com/localkart/homeservices-api/internal/repository"
)

func TestUserRepo_DuplicateEmailIsCaseSensitive(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@x.com"}))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "a@x.com"}), repository.ErrDuplicateEmail)
	assert.NoError(t, users.Create(ctx, &models.User{Email: "A@x.com"}))
}

func TestUserRepo_ReplaceAddressesChecksVersion(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()
	u := &models.User{Email: "a@x.com"}
	require.NoError(t, users.Create(ctx, u))

	addrs := []models.Address{{ID: primitive.NewObjectID(), Label: "Home", IsDefault: true}}
	updated, err := users.ReplaceAddresses(ctx, u.ID, 0, addrs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.AddressesVersion)

	_, err = users.ReplaceAddresses(ctx, u.ID, 0, nil)
	assert.ErrorIs(t, err, repository.ErrStale)

	_, err = users.ReplaceAddresses(ctx, primitive.NewObjectID(), 0, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepo_ReturnsCopies(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()
	u := &models.User{Email: "a@x.com", Addresses: []models.Address{{Label: "Home"}}}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	got.Addresses[0].Label = "mutated"

	again, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", again.Addresses[0].Label)
}

func TestUserRepo_SetRoleTouchesUpdatedAt(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Hour)
	u := &models.User{Email: "a@x.com", Role: models.RoleUser, UpdatedAt: before}
	require.NoError(t, users.Create(ctx, u))

	require.NoError(t, users.SetRole(ctx, "a@x.com", models.RoleAdmin))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.UpdatedAt.After(before))

	assert.ErrorIs(t, users.SetRole(ctx, "nobody@x.com", models.RoleAdmin), repository.ErrNotFound)
}

func TestBookingRepo_ListNewestFirstAndByOwner(t *testing.T) {
	bookings := NewStore().Bookings()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, bookings.Create(ctx, &models.Booking{UserID: &owner, CreatedAt: base}))
	require.NoError(t, bookings.Create(ctx, &models.Booking{CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, bookings.Create(ctx, &models.Booking{UserID: &owner, CreatedAt: base.Add(2 * time.Hour)}))

	all, err := bookings.List(ctx, repository.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))
	assert.True(t, all[1].CreatedAt.After(all[2].CreatedAt))

	mine, err := bookings.List(ctx, repository.BookingFilter{UserID: &owner})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestBookingRepo_UpdateIsConditionalOnStatus(t *testing.T) {
	bookings := NewStore().Bookings()
	ctx := context.Background()
	b := &models.Booking{Status: models.StatusPending}
	require.NoError(t, bookings.Create(ctx, b))

	confirmed := models.StatusConfirmed
	got, err := bookings.Update(ctx, b.ID, models.StatusPending, models.BookingPatch{Status: &confirmed}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	_, err = bookings.Update(ctx, b.ID, models.StatusPending, models.BookingPatch{Status: &confirmed}, time.Now())
	assert.ErrorIs(t, err, repository.ErrStale)
}

func TestServiceRepo_ListSortedAndFiltered(t *testing.T) {
	services := NewStore().Services()
	ctx := context.Background()
	require.NoError(t, services.InsertMany(ctx, []models.Service{
		{Name: "Kitchen Cleaning", Category: models.ServiceCleaning, IsActive: true},
		{Name: "Deep Home Cleaning", Category: models.ServiceCleaning, IsActive: false},
		{Name: "Haircut", Category: models.ServiceSalon, IsActive: true},
	}))

	all, err := services.List(ctx, models.ServiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Deep Home Cleaning", all[0].Name)
	assert.Equal(t, "Haircut", all[2].Name)

	active := true
	cat := models.ServiceCleaning
	filtered, err := services.List(ctx, models.ServiceFilter{Category: &cat, Active: &active})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Kitchen Cleaning", filtered[0].Name)

	toggled, err := services.ToggleActive(ctx, filtered[0].ID, time.Now())
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	n, err := services.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
