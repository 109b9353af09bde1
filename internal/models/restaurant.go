// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"math"
	"time"
)

// Category groups restaurants, e.g. "Korean" or "Cafe".
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Restaurant struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	CategoryID  sql.NullInt64 `db:"category_id" json:"category_id"`
	Address     string        `db:"address" json:"address"`
	Phone       string        `db:"phone" json:"phone"`
	Description string        `db:"description" json:"description"`
	Hours       string        `db:"hours" json:"hours"`
	ClosedDays  string        `db:"closed_days" json:"closed_days"`
	Website     string        `db:"website" json:"website"`
	ImagePath   string        `db:"image_path" json:"image_path"`
	ViewCount   int64         `db:"view_count" json:"view_count"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// RestaurantSummary is a restaurant joined with its category and review aggregates.
type RestaurantSummary struct { //nolint:govet // fieldalignment: readability over optimization
	Restaurant
	CategoryName sql.NullString  `db:"category_name" json:"category_name"`
	AvgRating    sql.NullFloat64 `db:"avg_rating" json:"-"`
	ReviewCount  int64           `db:"review_count" json:"review_count"`
}

// Rating returns the average rating rounded to one decimal, or nil without reviews.
func (s *RestaurantSummary) Rating() *float64 {
	return RoundRating(s.AvgRating)
}

// RoundRating rounds an aggregated average to one decimal place.
func RoundRating(avg sql.NullFloat64) *float64 {
	if !avg.Valid {
		return nil
	}
	r := math.Round(avg.Float64*10) / 10
	return &r
}

// RatingBucket is one row of a restaurant's star distribution.
type RatingBucket struct {
	Stars   int
	Count   int64
	Percent int
}

// RatingDistribution builds buckets for 5 down to 1 stars from per-star counts.
func RatingDistribution(counts map[int]int64) []RatingBucket {
	var total int64
	for _, c := range counts {
		total += c
	}

	buckets := make([]RatingBucket, 0, 5)
	for star := 5; star >= 1; star-- {
		b := RatingBucket{Stars: star, Count: counts[star]}
		if total > 0 {
			b.Percent = int(math.Round(float64(b.Count) / float64(total) * 100))
		}
		buckets = append(buckets, b)
	}
	return buckets
}
