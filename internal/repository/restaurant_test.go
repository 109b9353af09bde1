// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(rs []models.RestaurantSummary) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestListRestaurants_DefaultLatest(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	testutil.NewTestRestaurant(t, repo, "First")
	testutil.NewTestRestaurant(t, repo, "Second")

	list, err := repo.ListRestaurants(context.Background(), repository.RestaurantFilter{})

	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, names(list))
}

func TestListRestaurants_Query(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestRestaurant(t, repo, "Kimchi House")
	other := &models.Restaurant{Name: "Cafe Blue", Address: "Harbour Road", CreatedAt: testutil.Epoch}
	require.NoError(t, repo.CreateRestaurant(ctx, other))

	list, err := repo.ListRestaurants(ctx, repository.RestaurantFilter{Query: "kimchi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kimchi House"}, names(list))

	list, err = repo.ListRestaurants(ctx, repository.RestaurantFilter{Query: "HARBOUR"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cafe Blue"}, names(list))
}

func TestListRestaurants_Category(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	cat, err := repo.CreateCategory(ctx, "Bakery")
	require.NoError(t, err)
	bakery := &models.Restaurant{
		Name:       "Bread Lab",
		Address:    "2 Main Street",
		CategoryID: sql.NullInt64{Int64: cat.ID, Valid: true},
		CreatedAt:  testutil.Epoch,
	}
	require.NoError(t, repo.CreateRestaurant(ctx, bakery))
	testutil.NewTestRestaurant(t, repo, "Uncategorized")

	byName, err := repo.ListRestaurants(ctx, repository.RestaurantFilter{Category: "Bakery"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bread Lab"}, names(byName))
	assert.Equal(t, "Bakery", byName[0].CategoryName.String)

	byID, err := repo.ListRestaurants(ctx, repository.RestaurantFilter{Category: "  " + strconv.FormatInt(cat.ID, 10)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bread Lab"}, names(byID))
}

func TestListRestaurants_SortByRatingAndReviews(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")
	a := testutil.NewTestRestaurant(t, repo, "A")
	b := testutil.NewTestRestaurant(t, repo, "B")
	testutil.NewTestRestaurant(t, repo, "C")
	testutil.NewTestReview(t, repo, user.ID, a.ID, 5)
	testutil.NewTestReview(t, repo, user.ID, b.ID, 3)
	testutil.NewTestReview(t, repo, user.ID, b.ID, 3)

	byRating, err := repo.ListRestaurants(ctx, repository.RestaurantFilter{Sort: repository.SortRating})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(byRating))

	byReviews, err := repo.ListRestaurants(ctx, repository.RestaurantFilter{Sort: repository.SortReviews})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, names(byReviews))
	assert.Equal(t, int64(2), byReviews[0].ReviewCount)
	assert.InDelta(t, 3.0, byReviews[0].AvgRating.Float64, 0.001)
	assert.False(t, byReviews[2].AvgRating.Valid)
}

func TestListRestaurants_SortByViews(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	popular := testutil.NewTestRestaurant(t, repo, "Popular")
	testutil.NewTestRestaurant(t, repo, "Quiet")
	require.NoError(t, repo.IncrementViewCount(ctx, popular.ID))

	list, err := repo.ListRestaurants(ctx, repository.RestaurantFilter{Sort: repository.SortViews})

	require.NoError(t, err)
	assert.Equal(t, []string{"Popular", "Quiet"}, names(list))
	assert.Equal(t, int64(1), list[0].ViewCount)
}

func TestGetRestaurant(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")
	rest := testutil.NewTestRestaurant(t, repo, "Noodle Bar")
	testutil.NewTestReview(t, repo, user.ID, rest.ID, 4)
	testutil.NewTestReview(t, repo, user.ID, rest.ID, 5)

	got, err := repo.GetRestaurant(ctx, rest.ID)

	require.NoError(t, err)
	assert.Equal(t, "Noodle Bar", got.Name)
	assert.Equal(t, int64(2), got.ReviewCount)
	require.NotNil(t, got.Rating())
	assert.InDelta(t, 4.5, *got.Rating(), 0.001)
}

func TestGetRestaurant_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetRestaurant(context.Background(), 42)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRatingCounts(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")
	rest := testutil.NewTestRestaurant(t, repo, "Noodle Bar")
	testutil.NewTestReview(t, repo, user.ID, rest.ID, 5)
	testutil.NewTestReview(t, repo, user.ID, rest.ID, 5)
	testutil.NewTestReview(t, repo, user.ID, rest.ID, 2)

	counts, err := repo.RatingCounts(ctx, rest.ID)

	require.NoError(t, err)
	assert.Equal(t, map[int]int64{5: 2, 2: 1}, counts)
}

func TestListCategories(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	categories, err := repo.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Len(t, categories, 5)
	assert.Equal(t, "Cafe", categories[0].Name)
}
