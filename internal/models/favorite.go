// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

type Favorite struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	RestaurantID int64     `db:"restaurant_id" json:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FavoriteDetail is a favorite joined with its restaurant and review aggregates.
type FavoriteDetail struct { //nolint:govet // fieldalignment: readability over optimization
	Favorite
	RestaurantName    string          `db:"restaurant_name" json:"restaurant_name"`
	RestaurantAddress string          `db:"restaurant_address" json:"restaurant_address"`
	ImagePath         string          `db:"image_path" json:"image_path"`
	AvgRating         sql.NullFloat64 `db:"avg_rating" json:"-"`
	ReviewCount       int64           `db:"review_count" json:"review_count"`
}

// Rating returns the average rating rounded to one decimal, or nil without reviews.
func (f *FavoriteDetail) Rating() *float64 {
	return RoundRating(f.AvgRating)
}
