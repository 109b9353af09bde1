// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavorite(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")
	rest := testutil.NewTestRestaurant(t, repo, "Noodle Bar")

	on, err := repo.ToggleFavorite(ctx, user.ID, rest.ID, testutil.Epoch)
	require.NoError(t, err)
	assert.True(t, on)

	fav, err := repo.IsFavorite(ctx, user.ID, rest.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	on, err = repo.ToggleFavorite(ctx, user.ID, rest.ID, testutil.Epoch)
	require.NoError(t, err)
	assert.False(t, on)

	fav, err = repo.IsFavorite(ctx, user.ID, rest.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestListUserFavorites(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")
	older := testutil.NewTestRestaurant(t, repo, "Older")
	newer := testutil.NewTestRestaurant(t, repo, "Newer")
	testutil.NewTestReview(t, repo, user.ID, older.ID, 4)
	testutil.NewTestReview(t, repo, user.ID, older.ID, 3)

	_, err := repo.ToggleFavorite(ctx, user.ID, older.ID, testutil.Epoch)
	require.NoError(t, err)
	_, err = repo.ToggleFavorite(ctx, user.ID, newer.ID, testutil.Epoch.Add(time.Minute))
	require.NoError(t, err)

	favorites, err := repo.ListUserFavorites(ctx, user.ID)

	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "Newer", favorites[0].RestaurantName)
	assert.Nil(t, favorites[0].Rating())
	assert.Equal(t, "Older", favorites[1].RestaurantName)
	assert.Equal(t, int64(2), favorites[1].ReviewCount)
	require.NotNil(t, favorites[1].Rating())
	assert.InDelta(t, 3.5, *favorites[1].Rating(), 0.001)
}
