// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// MinRating and MaxRating bound a review's star rating.
const (
	MinRating = 1
	MaxRating = 5
)

type Review struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	RestaurantID int64     `db:"restaurant_id" json:"restaurant_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Rating       int       `db:"rating" json:"rating"`
	Content      string    `db:"content" json:"content"`
	PhotoPath    string    `db:"photo_path" json:"photo_path"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ReviewDetail is a review joined with its author and restaurant names.
type ReviewDetail struct { //nolint:govet // fieldalignment: readability over optimization
	Review
	AuthorName     string `db:"author_name" json:"author_name"`
	RestaurantName string `db:"restaurant_name" json:"restaurant_name"`
}

// Stars renders the rating as filled and empty stars.
func (r *Review) Stars() string {
	s := ""
	for i := MinRating; i <= MaxRating; i++ {
		if i <= r.Rating {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}
