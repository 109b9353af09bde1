// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"

	"codeberg.org/oliverandrich/localeats/internal/appcontext"
	"codeberg.org/oliverandrich/localeats/internal/ctxkeys"
	"codeberg.org/oliverandrich/localeats/internal/htmx"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/labstack/echo/v4"
)

// customContext wraps the Echo context with appcontext.Context.
// It also populates request.Context with asset paths and the media URL
// resolver for template access. mediaURL may be nil.
func customContext(assets *appcontext.Assets, mediaURL func(string) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxkeys.CSSPath{}, assets.CSSPath)
			ctx = context.WithValue(ctx, ctxkeys.JSPath{}, assets.JSPath)
			if mediaURL != nil {
				ctx = templates.WithMediaURL(ctx, mediaURL)
			}
			c.SetRequest(c.Request().WithContext(ctx))

			cc := &appcontext.Context{
				Context: c,
				Htmx:    htmx.ParseRequest(c.Request()),
				Assets:  assets,
			}
			return next(cc)
		}
	}
}
