// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/models"
)

// ToggleFavorite removes the favorite if it exists and adds it otherwise.
// It reports whether the restaurant is a favorite afterwards.
func (r *Repository) ToggleFavorite(ctx context.Context, userID, restaurantID int64, now time.Time) (bool, error) {
	var isFavorite bool
	err := r.InTx(ctx, func(tx *Repository) error {
		err := affected(tx.db.ExecContext(ctx,
			`DELETE FROM favorites WHERE user_id = ? AND restaurant_id = ?`, userID, restaurantID))
		if err == nil {
			isFavorite = false
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		_, err = tx.db.ExecContext(ctx,
			`INSERT INTO favorites (user_id, restaurant_id, created_at) VALUES (?, ?, ?)`,
			userID, restaurantID, now)
		if err != nil {
			return wrapError(err)
		}
		isFavorite = true
		return nil
	})
	return isFavorite, err
}

// IsFavorite reports whether the user marked the restaurant.
func (r *Repository) IsFavorite(ctx context.Context, userID, restaurantID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND restaurant_id = ?)`, userID, restaurantID)
	return exists, err
}

// ListUserFavorites returns a user's favorites with review aggregates, newest first.
func (r *Repository) ListUserFavorites(ctx context.Context, userID int64) ([]models.FavoriteDetail, error) {
	favorites := []models.FavoriteDetail{}
	err := r.db.SelectContext(ctx, &favorites, `
		SELECT f.*, r.name AS restaurant_name, r.address AS restaurant_address, r.image_path AS image_path,
		       AVG(rv.rating) AS avg_rating, COUNT(rv.id) AS review_count
		FROM favorites f
		JOIN restaurants r ON r.id = f.restaurant_id
		LEFT JOIN reviews rv ON rv.restaurant_id = r.id
		WHERE f.user_id = ?
		GROUP BY f.id
		ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
