// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/models"
)

// Sort orders for ListRestaurants.
const (
	SortLatest  = "latest"
	SortRating  = "rating"
	SortReviews = "reviews"
	SortViews   = "views"
)

// RestaurantFilter narrows and orders a restaurant listing.
type RestaurantFilter struct {
	Query    string // substring of name or address
	Category string // category ID when numeric, otherwise a category name
	Sort     string
}

const restaurantSummarySelect = `
	SELECT r.*, c.name AS category_name, AVG(rv.rating) AS avg_rating, COUNT(rv.id) AS review_count
	FROM restaurants r
	LEFT JOIN categories c ON c.id = r.category_id
	LEFT JOIN reviews rv ON rv.restaurant_id = r.id`

// ListRestaurants returns restaurants with their review aggregates.
func (r *Repository) ListRestaurants(ctx context.Context, f RestaurantFilter) ([]models.RestaurantSummary, error) {
	var (
		where []string
		args  []any
	)

	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(instr(lower(r.name), lower(?)) > 0 OR instr(lower(r.address), lower(?)) > 0)")
		args = append(args, q, q)
	}

	if cat := strings.TrimSpace(f.Category); cat != "" {
		if id, err := strconv.ParseInt(cat, 10, 64); err == nil {
			where = append(where, "r.category_id = ?")
			args = append(args, id)
		} else {
			where = append(where, "c.name = ?")
			args = append(args, cat)
		}
	}

	query := restaurantSummarySelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY r.id ORDER BY " + orderBy(f.Sort)

	restaurants := []models.RestaurantSummary{}
	if err := r.db.SelectContext(ctx, &restaurants, query, args...); err != nil {
		return nil, err
	}
	return restaurants, nil
}

func orderBy(sort string) string {
	switch sort {
	case SortRating:
		return "avg_rating DESC, review_count DESC, r.id DESC"
	case SortReviews:
		return "review_count DESC, r.id DESC"
	case SortViews:
		return "r.view_count DESC, r.id DESC"
	default:
		return "r.id DESC"
	}
}

// GetRestaurant retrieves a restaurant with its review aggregates.
func (r *Repository) GetRestaurant(ctx context.Context, id int64) (*models.RestaurantSummary, error) {
	var restaurant models.RestaurantSummary
	err := r.db.GetContext(ctx, &restaurant, restaurantSummarySelect+" WHERE r.id = ? GROUP BY r.id", id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &restaurant, nil
}

// IncrementViewCount bumps the view counter in place.
func (r *Repository) IncrementViewCount(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `UPDATE restaurants SET view_count = view_count + 1 WHERE id = ?`, id))
}

// CreateRestaurant inserts a restaurant and sets its ID.
func (r *Repository) CreateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO restaurants (name, category_id, address, phone, description, hours, closed_days, website, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rest.Name, rest.CategoryID, rest.Address, rest.Phone, rest.Description,
		rest.Hours, rest.ClosedDays, rest.Website, rest.ImagePath, rest.CreatedAt)
	if err != nil {
		return wrapError(err)
	}
	rest.ID, err = res.LastInsertId()
	return err
}

// RatingCounts returns the number of reviews per star rating.
func (r *Repository) RatingCounts(ctx context.Context, restaurantID int64) (map[int]int64, error) {
	var rows []struct {
		Rating int   `db:"rating"`
		Count  int64 `db:"n"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT rating, count(*) AS n FROM reviews WHERE restaurant_id = ? GROUP BY rating`, restaurantID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory retrieves a category by ID.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.GetContext(ctx, &category, `SELECT * FROM categories WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &category, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, wrapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: name}, nil
}
