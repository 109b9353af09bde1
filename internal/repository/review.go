// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/localeats/internal/models"
)

const reviewDetailSelect = `
	SELECT rv.*, u.username AS author_name, r.name AS restaurant_name
	FROM reviews rv
	JOIN users u ON u.id = rv.user_id
	JOIN restaurants r ON r.id = rv.restaurant_id`

// CreateReview inserts a review and sets its ID.
func (r *Repository) CreateReview(ctx context.Context, review *models.Review) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (restaurant_id, user_id, rating, content, photo_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.RestaurantID, review.UserID, review.Rating, review.Content, review.PhotoPath, review.CreatedAt)
	if err != nil {
		return wrapError(err)
	}
	review.ID, err = res.LastInsertId()
	return err
}

// GetReview retrieves a review by ID.
func (r *Repository) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &review, nil
}

// UpdateReview saves rating, content and photo of a review.
func (r *Repository) UpdateReview(ctx context.Context, review *models.Review) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, content = ?, photo_path = ? WHERE id = ?`,
		review.Rating, review.Content, review.PhotoPath, review.ID))
}

// DeleteReview deletes a review by ID.
func (r *Repository) DeleteReview(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id))
}

// ListReviews returns every review, newest first.
func (r *Repository) ListReviews(ctx context.Context) ([]models.ReviewDetail, error) {
	return r.selectReviews(ctx, reviewDetailSelect+" ORDER BY rv.id DESC")
}

// ListRestaurantReviews returns the reviews of a restaurant, newest first.
func (r *Repository) ListRestaurantReviews(ctx context.Context, restaurantID int64) ([]models.ReviewDetail, error) {
	return r.selectReviews(ctx, reviewDetailSelect+" WHERE rv.restaurant_id = ? ORDER BY rv.created_at DESC, rv.id DESC", restaurantID)
}

// ListUserReviews returns the reviews written by a user, newest first.
func (r *Repository) ListUserReviews(ctx context.Context, userID int64) ([]models.ReviewDetail, error) {
	return r.selectReviews(ctx, reviewDetailSelect+" WHERE rv.user_id = ? ORDER BY rv.created_at DESC, rv.id DESC", userID)
}

func (r *Repository) selectReviews(ctx context.Context, query string, args ...any) ([]models.ReviewDetail, error) {
	reviews := []models.ReviewDetail{}
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, err
	}
	return reviews, nil
}
