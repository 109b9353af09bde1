// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"codeberg.org/oliverandrich/localeats/internal/htmx"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"github.com/labstack/echo/v4"
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets, and user.
type Context struct {
	echo.Context
	Htmx   *htmx.Request
	Assets *Assets
	User   *models.User // nil if not authenticated
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// WantsJSON reports whether the client asked for a JSON answer instead of a
// redirect: htmx and XMLHttpRequest calls, JSON bodies and JSON-only Accept headers.
func (c *Context) WantsJSON() bool {
	if c.Htmx != nil && c.Htmx.IsHtmx {
		return true
	}
	return WantsJSON(c.Context)
}

// WantsJSON is the header check behind Context.WantsJSON for plain echo contexts.
func WantsJSON(c echo.Context) bool {
	h := c.Request().Header
	return h.Get(echo.HeaderXRequestedWith) == "XMLHttpRequest" ||
		h.Get(echo.HeaderContentType) == echo.MIMEApplicationJSON ||
		h.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON ||
		h.Get(htmx.HeaderRequest) == "true"
}
