// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"codeberg.org/oliverandrich/localeats/internal/storage"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/labstack/echo/v4"
)

// ListRestaurants renders the searchable restaurant listing.
func (h *Handlers) ListRestaurants(c echo.Context) error {
	ctx := c.Request().Context()
	filter := repository.RestaurantFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	}

	restaurants, err := h.repo.ListRestaurants(ctx, filter)
	if err != nil {
		return err
	}
	categories, err := h.repo.ListCategories(ctx)
	if err != nil {
		return err
	}

	return h.page(c, http.StatusOK, "restaurant_list", templates.RestaurantList{
		Restaurants: restaurants,
		Categories:  categories,
		Query:       filter.Query,
		Category:    filter.Category,
		Sort:        filter.Sort,
	})
}

// RestaurantDetail renders one restaurant and counts the view.
func (h *Handlers) RestaurantDetail(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.repo.IncrementViewCount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}

	restaurant, err := h.repo.GetRestaurant(ctx, id)
	if err != nil {
		return err
	}
	reviews, err := h.repo.ListRestaurantReviews(ctx, id)
	if err != nil {
		return err
	}
	counts, err := h.repo.RatingCounts(ctx, id)
	if err != nil {
		return err
	}

	data := templates.RestaurantDetail{
		Restaurant:   restaurant,
		Reviews:      reviews,
		Distribution: models.RatingDistribution(counts),
	}
	if user := currentUser(c); user != nil {
		if data.IsFavorite, err = h.repo.IsFavorite(ctx, user.ID, id); err != nil {
			return err
		}
	}

	return h.page(c, http.StatusOK, "restaurant_detail", data)
}

// CreateRestaurantPage renders the new restaurant form.
func (h *Handlers) CreateRestaurantPage(c echo.Context) error {
	categories, err := h.repo.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return h.page(c, http.StatusOK, "restaurant_create", templates.RestaurantForm{
		Categories: categories,
		Form:       url.Values{},
	})
}

// CreateRestaurant stores a restaurant with an optional image.
func (h *Handlers) CreateRestaurant(c echo.Context) error {
	ctx := c.Request().Context()

	form := url.Values{}
	for _, f := range []string{"name", "category", "address", "phone", "hours", "closed_days", "website", "description"} {
		form.Set(f, strings.TrimSpace(c.FormValue(f)))
	}

	errs := templates.Errors{}
	if form.Get("name") == "" {
		errs["name"] = "error_required"
	}
	if form.Get("address") == "" {
		errs["address"] = "error_required"
	}

	rest := &models.Restaurant{
		Name:        form.Get("name"),
		Address:     form.Get("address"),
		Phone:       form.Get("phone"),
		Hours:       form.Get("hours"),
		ClosedDays:  form.Get("closed_days"),
		Website:     form.Get("website"),
		Description: form.Get("description"),
		CreatedAt:   h.now(),
	}

	if id, err := strconv.ParseInt(form.Get("category"), 10, 64); err == nil {
		cat, err := h.repo.GetCategory(ctx, id)
		switch {
		case err == nil:
			rest.CategoryID = sql.NullInt64{Int64: cat.ID, Valid: true}
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}

	if len(errs) == 0 {
		key, msg, err := h.saveUpload(c, "image", storage.FolderRestaurants)
		if err != nil {
			return err
		}
		if msg != "" {
			errs["image"] = msg
		}
		rest.ImagePath = key
	}

	if len(errs) > 0 {
		categories, err := h.repo.ListCategories(ctx)
		if err != nil {
			return err
		}
		return h.page(c, http.StatusUnprocessableEntity, "restaurant_create", templates.RestaurantForm{
			Categories: categories,
			Form:       form,
			Errors:     errs,
		})
	}

	if err := h.repo.CreateRestaurant(ctx, rest); err != nil {
		h.deleteFile(c, rest.ImagePath)
		return err
	}

	slog.Info("restaurant_created", "restaurant_id", rest.ID, "user_id", currentUser(c).ID)
	h.flash(c, session.FlashSuccess, "restaurant_created")
	return redirect(c, restaurantURL(rest.ID))
}

// saveUpload stores the optional image in field. A rejected file yields a
// translation message ID instead of an error.
func (h *Handlers) saveUpload(c echo.Context, field, folder string) (key, msg string, err error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}

	key, err = storage.SaveUpload(c.Request().Context(), h.storage, folder, header)
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return "", "error_file_too_large", nil
	case errors.Is(err, storage.ErrFileType):
		return "", "error_file_type", nil
	case err != nil:
		return "", "", err
	}
	return key, "", nil
}

