package profile_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/service/profile"
	"github.com/oggyb/swipematch/internal/testutil"
)

func ptr(s string) *string { return &s }

func setup(t *testing.T) (*profile.Service, *db.User, *gorm.DB) {
	t.Helper()
	appCtx := testutil.NewAppContext(t)
	u := testutil.CreateUser(t, appCtx.DB, db.User{FirstName: "Ana", LastName: "Cruz", Bio: "old bio", School: "UP"})
	return profile.NewService(appCtx), u, appCtx.DB
}

func TestUpdateProfile_OnlyProvidedFields(t *testing.T) {
	ctx := context.Background()
	svc, u, _ := setup(t)

	got, err := svc.UpdateProfile(ctx, u.ID, profile.Update{Bio: ptr("  new bio "), City: ptr("Cebu")})
	require.NoError(t, err)
	assert.Equal(t, "new bio", got.Bio)
	assert.Equal(t, "Cebu", got.City)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "UP", got.School)

	_, err = svc.UpdateProfile(ctx, u.ID, profile.Update{FirstName: ptr(" ")})
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = svc.UpdateProfile(ctx, 999, profile.Update{Bio: ptr("x")})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestUploadPhoto_LimitAndPositions(t *testing.T) {
	ctx := context.Background()
	svc, u, _ := setup(t)

	for i := 0; i < 5; i++ {
		p, err := svc.UploadPhoto(ctx, u.ID, fmt.Sprintf("https://img/%d.jpg", i))
		require.NoError(t, err)
		assert.Equal(t, i, p.Position)
	}

	_, err := svc.UploadPhoto(ctx, u.ID, "https://img/6.jpg")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	_, err = svc.UploadPhoto(ctx, u.ID, "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}

func TestDeletePhoto_Reindexes(t *testing.T) {
	ctx := context.Background()
	svc, u, _ := setup(t)

	var ids []uint64
	for i := 0; i < 3; i++ {
		p, err := svc.UploadPhoto(ctx, u.ID, fmt.Sprintf("https://img/%d.jpg", i))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	require.NoError(t, svc.DeletePhoto(ctx, u.ID, ids[0]))
	assert.ErrorIs(t, svc.DeletePhoto(ctx, u.ID, ids[0]), svcErr.ErrNotFound)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, ids[1], got.Photos[0].ID)
	assert.Equal(t, 0, got.Photos[0].Position)
	assert.Equal(t, 1, got.Photos[1].Position)
}

func TestSetPrimaryPhoto_SingleFlag(t *testing.T) {
	ctx := context.Background()
	svc, u, database := setup(t)
	other := testutil.CreateUser(t, database, db.User{})

	a, err := svc.UploadPhoto(ctx, u.ID, "https://img/a.jpg")
	require.NoError(t, err)
	b, err := svc.UploadPhoto(ctx, u.ID, "https://img/b.jpg")
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img/a.jpg", profile.PrimaryPhotoURL(got))

	_, err = svc.SetPrimaryPhoto(ctx, u.ID, a.ID)
	require.NoError(t, err)
	p, err := svc.SetPrimaryPhoto(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, p.IsPrimary)

	got, err = svc.Get(ctx, u.ID)
	require.NoError(t, err)
	primaries := 0
	for _, ph := range got.Photos {
		if ph.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
	assert.Equal(t, "https://img/b.jpg", profile.PrimaryPhotoURL(got))

	// photos of another user are invisible
	_, err = svc.SetPrimaryPhoto(ctx, other.ID, b.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestAge(t *testing.T) {
	born := testutil.Birthdate(1995, time.June, 15)

	assert.Equal(t, 28, *profile.Age(born, time.Date(2024, time.June, 14, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, *profile.Age(born, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 28, *profile.Age(born, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, profile.Age(time.Time{}, time.Now()))
}

func TestPrimaryPhotoURL_NoPhotos(t *testing.T) {
	assert.Empty(t, profile.PrimaryPhotoURL(&db.User{}))
}
