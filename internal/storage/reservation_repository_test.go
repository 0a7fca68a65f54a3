package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

func createTestProperty(t *testing.T, db *DB, remoteID string) *models.Property {
	t.Helper()

	p := &models.Property{RemoteID: remoteID, Name: "prop-" + remoteID, Active: true}
	require.NoError(t, NewPropertyRepository(db).Create(context.Background(), p))
	return p
}

func septemberDay(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func TestReservationRepository_CreateAndGet(t *testing.T) {
	db := newRepoTestDB(t)
	property := createTestProperty(t, db, "lst-1")
	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := &models.Reservation{
		RemoteID:        "res-1",
		PropertyID:      property.ID,
		GuestName:       "Alice",
		GuestEmail:      "alice@example.com",
		CheckIn:         septemberDay(1),
		CheckOut:        septemberDay(5),
		Status:          models.ReservationStatusConfirmed,
		Channel:         "airbnb",
		TotalPriceCents: 123450,
	}
	require.NoError(t, repo.Create(ctx, res))

	got, err := repo.GetByRemoteID(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "Alice", got.GuestName)
	assert.Equal(t, int64(123450), got.TotalPriceCents)
	assert.True(t, got.CheckIn.Equal(septemberDay(1)))

	_, err = repo.GetByRemoteID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepository_Update(t *testing.T) {
	db := newRepoTestDB(t)
	property := createTestProperty(t, db, "lst-1")
	repo := NewReservationRepository(db)
	ctx := context.Background()

	res := &models.Reservation{
		RemoteID:   "res-1",
		PropertyID: property.ID,
		GuestName:  "Alice",
		CheckIn:    septemberDay(1),
		CheckOut:   septemberDay(5),
		Status:     models.ReservationStatusConfirmed,
	}
	require.NoError(t, repo.Create(ctx, res))

	res.Status = models.ReservationStatusCancelled
	require.NoError(t, repo.Update(ctx, res))

	got, err := repo.GetByRemoteID(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, got.Status)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReservationRepository_ListByPropertyBetween(t *testing.T) {
	db := newRepoTestDB(t)
	property := createTestProperty(t, db, "lst-1")
	other := createTestProperty(t, db, "lst-2")
	repo := NewReservationRepository(db)
	ctx := context.Background()

	add := func(remoteID, propertyID string, in, out time.Time) {
		require.NoError(t, repo.Create(ctx, &models.Reservation{
			RemoteID:   remoteID,
			PropertyID: propertyID,
			GuestName:  "Guest",
			CheckIn:    in,
			CheckOut:   out,
			Status:     models.ReservationStatusConfirmed,
		}))
	}

	add("ends-before", property.ID, septemberDay(1), septemberDay(4))
	add("straddles-start", property.ID, septemberDay(3), septemberDay(7))
	add("inside", property.ID, septemberDay(10), septemberDay(12))
	add("starts-after", property.ID, septemberDay(20), septemberDay(22))
	add("other-property", other.ID, septemberDay(10), septemberDay(12))

	got, err := repo.ListByPropertyBetween(ctx, property.ID, septemberDay(5), septemberDay(15))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "straddles-start", got[0].RemoteID)
	assert.Equal(t, "inside", got[1].RemoteID)

	all, err := repo.ListByProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
