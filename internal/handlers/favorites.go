// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/localeats/internal/htmx"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/labstack/echo/v4"
)

// ToggleFavorite adds or removes a restaurant from the user's favorites.
// Script and htmx callers get {"is_favorite": bool}, forms a redirect.
func (h *Handlers) ToggleFavorite(c echo.Context) error {
	restaurant, err := h.restaurantParam(c, "restaurant_id")
	if err != nil {
		return err
	}

	isFavorite, err := h.repo.ToggleFavorite(c.Request().Context(), currentUser(c).ID, restaurant.ID, h.now())
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		htmx.Trigger(c.Response(), "favorite-changed")
		return c.JSON(http.StatusOK, map[string]bool{"is_favorite": isFavorite})
	}
	return redirect(c, restaurantURL(restaurant.ID))
}

// ListFavorites renders the user's favorites, newest first.
func (h *Handlers) ListFavorites(c echo.Context) error {
	favorites, err := h.repo.ListUserFavorites(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return h.page(c, http.StatusOK, "favorite_list", templates.FavoriteList{Favorites: favorites})
}
