// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"codeberg.org/oliverandrich/localeats/internal/storage"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/labstack/echo/v4"
)

// ListReviews renders every review, newest first.
func (h *Handlers) ListReviews(c echo.Context) error {
	reviews, err := h.repo.ListReviews(c.Request().Context())
	if err != nil {
		return err
	}
	return h.page(c, http.StatusOK, "review_list", templates.ReviewList{Reviews: reviews})
}

// CreateReviewPage renders the review form for a restaurant.
func (h *Handlers) CreateReviewPage(c echo.Context) error {
	restaurant, err := h.restaurantParam(c, "restaurant_id")
	if err != nil {
		return err
	}
	return h.page(c, http.StatusOK, "review_form", templates.ReviewForm{Restaurant: restaurant})
}

// CreateReview stores a review by the current user.
func (h *Handlers) CreateReview(c echo.Context) error {
	restaurant, err := h.restaurantParam(c, "restaurant_id")
	if err != nil {
		return err
	}

	form, errs := reviewInput(c)
	if len(errs) == 0 {
		key, msg, err := h.saveUpload(c, "photo", storage.FolderReviews)
		if err != nil {
			return err
		}
		if msg != "" {
			errs["photo"] = msg
		}
		form.PhotoPath = key
	}
	if len(errs) > 0 {
		return h.page(c, http.StatusUnprocessableEntity, "review_form", templates.ReviewForm{
			Restaurant: restaurant,
			Rating:     form.Rating,
			Content:    form.Content,
			Errors:     errs,
		})
	}

	review := &models.Review{
		RestaurantID: restaurant.ID,
		UserID:       currentUser(c).ID,
		Rating:       form.Rating,
		Content:      form.Content,
		PhotoPath:    form.PhotoPath,
		CreatedAt:    h.now(),
	}
	if err := h.repo.CreateReview(c.Request().Context(), review); err != nil {
		h.deleteFile(c, review.PhotoPath)
		return err
	}

	slog.Info("review_created", "review_id", review.ID, "restaurant_id", restaurant.ID, "user_id", review.UserID)
	h.flash(c, session.FlashSuccess, "review_created")
	return redirect(c, restaurantURL(restaurant.ID))
}

// EditReviewPage renders the form for the author's review.
func (h *Handlers) EditReviewPage(c echo.Context) error {
	review, restaurant, err := h.authoredReview(c)
	if err != nil || review == nil {
		return err
	}
	return h.page(c, http.StatusOK, "review_form", templates.ReviewForm{
		Restaurant: restaurant,
		Review:     review,
		Rating:     review.Rating,
		Content:    review.Content,
	})
}

// EditReview updates rating, content and optionally the photo.
func (h *Handlers) EditReview(c echo.Context) error {
	review, restaurant, err := h.authoredReview(c)
	if err != nil || review == nil {
		return err
	}

	form, errs := reviewInput(c)
	if len(errs) == 0 {
		key, msg, err := h.saveUpload(c, "photo", storage.FolderReviews)
		if err != nil {
			return err
		}
		if msg != "" {
			errs["photo"] = msg
		}
		form.PhotoPath = key
	}
	if len(errs) > 0 {
		return h.page(c, http.StatusUnprocessableEntity, "review_form", templates.ReviewForm{
			Restaurant: restaurant,
			Review:     review,
			Rating:     form.Rating,
			Content:    form.Content,
			Errors:     errs,
		})
	}

	oldPhoto := ""
	review.Rating = form.Rating
	review.Content = form.Content
	if form.PhotoPath != "" {
		oldPhoto, review.PhotoPath = review.PhotoPath, form.PhotoPath
	}

	if err := h.repo.UpdateReview(c.Request().Context(), review); err != nil {
		h.deleteFile(c, form.PhotoPath)
		return err
	}
	h.deleteFile(c, oldPhoto)

	slog.Info("review_updated", "review_id", review.ID, "user_id", review.UserID)
	h.flash(c, session.FlashSuccess, "review_updated")
	return redirect(c, restaurantURL(restaurant.ID))
}

// DeleteReview removes the author's review and its photo.
func (h *Handlers) DeleteReview(c echo.Context) error {
	review, restaurant, err := h.authoredReview(c)
	if err != nil || review == nil {
		return err
	}

	if err := h.repo.DeleteReview(c.Request().Context(), review.ID); err != nil {
		return err
	}
	h.deleteFile(c, review.PhotoPath)

	slog.Info("review_deleted", "review_id", review.ID, "user_id", review.UserID)
	h.flash(c, session.FlashSuccess, "review_deleted")
	return redirect(c, restaurantURL(restaurant.ID))
}

// authoredReview loads the review in the path and its restaurant. When the
// current user is not the author it flashes an error, redirects to the
// restaurant and returns a nil review.
func (h *Handlers) authoredReview(c echo.Context) (*models.Review, *models.RestaurantSummary, error) {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return nil, nil, err
	}

	review, err := h.repo.GetReview(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound)
	}
	if err != nil {
		return nil, nil, err
	}

	restaurant, err := h.repo.GetRestaurant(ctx, review.RestaurantID)
	if err != nil {
		return nil, nil, err
	}

	if user := currentUser(c); user == nil || user.ID != review.UserID {
		slog.Warn("review_not_author", "review_id", review.ID)
		h.flash(c, session.FlashError, "review_not_author")
		return nil, nil, redirect(c, restaurantURL(restaurant.ID))
	}
	return review, restaurant, nil
}

func (h *Handlers) restaurantParam(c echo.Context, name string) (*models.RestaurantSummary, error) {
	id, err := pathID(c, name)
	if err != nil {
		return nil, err
	}
	restaurant, err := h.repo.GetRestaurant(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound)
	}
	return restaurant, err
}

type reviewForm struct {
	Rating    int
	Content   string
	PhotoPath string
}

func reviewInput(c echo.Context) (reviewForm, templates.Errors) {
	var f reviewForm
	errs := templates.Errors{}

	rating, err := strconv.Atoi(c.FormValue("rating"))
	if err != nil || rating < models.MinRating || rating > models.MaxRating {
		errs["rating"] = "error_rating"
	} else {
		f.Rating = rating
	}

	f.Content = strings.TrimSpace(c.FormValue("content"))
	if f.Content == "" {
		errs["content"] = "error_required"
	}
	return f, errs
}

func restaurantURL(id int64) string {
	return "/restaurants/" + strconv.FormatInt(id, 10)
}
