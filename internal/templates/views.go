// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"net/url"

	"codeberg.org/oliverandrich/localeats/internal/models"
)

// Errors maps form fields to translation message IDs.
type Errors map[string]string

// AuthForm backs the login, signup and forgot-password pages.
type AuthForm struct {
	Username string
	Email    string
	Next     string
	Errors   Errors
}

// SentPage confirms that a link was mailed to Email. Validity is the
// rendered link lifetime, shown after signup.
type SentPage struct {
	Email    string
	Validity string
}

type ResetForm struct {
	Token  string
	Errors Errors
}

type MyPage struct {
	User      *models.User
	Reviews   []models.ReviewDetail
	Favorites []models.FavoriteDetail
}

// ProfilePage backs the edit and delete-account pages.
type ProfilePage struct {
	User   *models.User
	Errors Errors
}

type RestaurantList struct { //nolint:govet // fieldalignment not critical
	Restaurants []models.RestaurantSummary
	Categories  []models.Category
	Query       string
	Category    string
	Sort        string
}

// SortOptions lists the accepted list orderings with their label IDs.
func (RestaurantList) SortOptions() [][2]string {
	return [][2]string{
		{"latest", "sort_latest"},
		{"rating", "sort_rating"},
		{"reviews", "sort_reviews"},
		{"views", "sort_views"},
	}
}

type RestaurantDetail struct { //nolint:govet // fieldalignment not critical
	Restaurant   *models.RestaurantSummary
	Reviews      []models.ReviewDetail
	Distribution []models.RatingBucket
	IsFavorite   bool
}

type RestaurantForm struct {
	Categories []models.Category
	Form       url.Values
	Errors     Errors
}

type ReviewForm struct { //nolint:govet // fieldalignment not critical
	Restaurant *models.RestaurantSummary
	Review     *models.Review // nil when creating
	Rating     int
	Content    string
	Errors     Errors
}

type ReviewList struct {
	Reviews []models.ReviewDetail
}

type FavoriteList struct {
	Favorites []models.FavoriteDetail
}

type ErrorPage struct {
	Code    int
	Message string
}
