package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

func newRepoTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewTestDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunMigrations(db))
	return db
}

func TestPropertyRepository_CreateAndGet(t *testing.T) {
	repo := NewPropertyRepository(newRepoTestDB(t))
	ctx := context.Background()

	feedURL := "https://feeds.example.com/p1.ics"
	p := &models.Property{
		RemoteID:    "lst-1",
		Name:        "cabin-1",
		Title:       "Lakeside Cabin",
		Bedrooms:    2,
		Bathrooms:   1.5,
		Amenities:   []string{"wifi"},
		Tags:        []string{"lakefront", "pets"},
		CalendarURL: &feedURL,
		Active:      true,
	}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID, "create assigns an id")

	got, err := repo.GetByRemoteID(ctx, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "cabin-1", got.Name)
	assert.Equal(t, []string{"wifi"}, got.Amenities)
	assert.Equal(t, []string{"lakefront", "pets"}, got.Tags)
	require.NotNil(t, got.CalendarURL)
	assert.Equal(t, feedURL, *got.CalendarURL)
	assert.True(t, got.HasCalendarFeed())

	byName, err := repo.GetByName(ctx, "cabin-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)
}

func TestPropertyRepository_NilListsRoundTripEmpty(t *testing.T) {
	repo := NewPropertyRepository(newRepoTestDB(t))
	ctx := context.Background()

	p := &models.Property{RemoteID: "lst-2", Name: "bare", Active: true}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Amenities)
	assert.Empty(t, got.Amenities)
	assert.False(t, got.HasCalendarFeed())
}

func TestPropertyRepository_NotFound(t *testing.T) {
	repo := NewPropertyRepository(newRepoTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByRemoteID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Update(ctx, &models.Property{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.MarkInactive(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyRepository_Update(t *testing.T) {
	repo := NewPropertyRepository(newRepoTestDB(t))
	ctx := context.Background()

	p := &models.Property{RemoteID: "lst-3", Name: "before", Active: true}
	require.NoError(t, repo.Create(ctx, p))

	p.Name = "after"
	p.Tags = []string{"updated"}
	syncedAt := time.Now().UTC().Truncate(time.Second)
	p.LastSyncedAt = &syncedAt
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
	assert.Equal(t, []string{"updated"}, got.Tags)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, got.LastSyncedAt.Equal(syncedAt))
}

func TestPropertyRepository_ListActiveExcludesDeactivated(t *testing.T) {
	repo := NewPropertyRepository(newRepoTestDB(t))
	ctx := context.Background()

	a := &models.Property{RemoteID: "lst-a", Name: "alpha", Active: true}
	b := &models.Property{RemoteID: "lst-b", Name: "beta", Active: true}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.MarkInactive(ctx, b.ID))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "alpha", active[0].Name)

	// The deactivated row is retained, not deleted.
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
