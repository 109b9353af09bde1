// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"database/sql"
	"testing"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpired(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	assert.False(t, models.Expired(created, ttl, created.Add(time.Hour)))
	assert.False(t, models.Expired(created, ttl, created.Add(ttl)))
	assert.True(t, models.Expired(created, ttl, created.Add(ttl+time.Second)))
}

func TestRoundRating(t *testing.T) {
	assert.Nil(t, models.RoundRating(sql.NullFloat64{}))

	r := models.RoundRating(sql.NullFloat64{Float64: 4.3333, Valid: true})
	require.NotNil(t, r)
	assert.InDelta(t, 4.3, *r, 0.0001)

	r = models.RoundRating(sql.NullFloat64{Float64: 3.75, Valid: true})
	require.NotNil(t, r)
	assert.InDelta(t, 3.8, *r, 0.0001)
}

func TestRatingDistribution(t *testing.T) {
	buckets := models.RatingDistribution(map[int]int64{5: 2, 4: 1})

	require.Len(t, buckets, 5)
	assert.Equal(t, models.RatingBucket{Stars: 5, Count: 2, Percent: 67}, buckets[0])
	assert.Equal(t, models.RatingBucket{Stars: 4, Count: 1, Percent: 33}, buckets[1])
	assert.Equal(t, models.RatingBucket{Stars: 1, Count: 0, Percent: 0}, buckets[4])
}

func TestRatingDistribution_NoReviews(t *testing.T) {
	buckets := models.RatingDistribution(nil)

	require.Len(t, buckets, 5)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Percent)
	}
}

func TestReview_Stars(t *testing.T) {
	r := &models.Review{Rating: 3}

	assert.Equal(t, "★★★☆☆", r.Stars())
}

func TestSummaryRating(t *testing.T) {
	s := &models.RestaurantSummary{AvgRating: sql.NullFloat64{Float64: 4.25, Valid: true}}
	f := &models.FavoriteDetail{}

	require.NotNil(t, s.Rating())
	assert.Nil(t, f.Rating())
}
