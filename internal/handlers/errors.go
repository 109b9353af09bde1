// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders the error page for failed requests. JSON clients
// get a JSON body instead.
func (h *Handlers) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok && m != http.StatusText(code) {
			message = m
		}
	case errors.Is(err, repository.ErrNotFound):
		code = http.StatusNotFound
	}

	if code >= http.StatusInternalServerError {
		slog.Error("request_failed", "path", c.Request().URL.Path, "error", err)
	}

	ctx := c.Request().Context()
	if message == "" {
		message = errorMessage(ctx, code)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else if wantsJSON(c) {
		err = c.JSON(code, map[string]string{"error": message})
	} else {
		err = Render(c, code, templates.Page("error", templates.ErrorPage{Code: code, Message: message}))
	}
	if err != nil {
		slog.Error("failed to render error page", "error", err)
	}
}

func errorMessage(ctx context.Context, code int) string {
	switch code {
	case http.StatusNotFound:
		return i18n.T(ctx, "error_not_found")
	case http.StatusForbidden:
		return i18n.T(ctx, "error_forbidden")
	case http.StatusTooManyRequests:
		return i18n.T(ctx, "error_rate_limited")
	case http.StatusInternalServerError:
		return i18n.T(ctx, "error_internal")
	}
	return http.StatusText(code)
}
