// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/appcontext"
	"codeberg.org/oliverandrich/localeats/internal/auth"
	"codeberg.org/oliverandrich/localeats/internal/htmx"
	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// page renders a page template and shows the pending flash message on it.
func (h *Handlers) page(c echo.Context, status int, name string, data any) error {
	if f := h.sessions.PopFlash(c.Response(), c.Request()); f != nil {
		c.SetRequest(c.Request().WithContext(templates.WithFlash(c.Request().Context(), f)))
	}
	return Render(c, status, templates.Page(name, data))
}

// flash queues a translated message for the next rendered page.
func (h *Handlers) flash(c echo.Context, level, messageID string) {
	msg := i18n.T(c.Request().Context(), messageID)
	if err := h.sessions.SetFlash(c.Response(), level, msg); err != nil {
		slog.Error("failed to set flash", "error", err)
	}
}

func redirect(c echo.Context, target string) error {
	htmx.Redirect(c.Response(), c.Request(), target)
	return nil
}

func currentUser(c echo.Context) *models.User {
	if cc, ok := c.(*appcontext.Context); ok && cc.User != nil {
		return cc.User
	}
	return auth.GetUser(c.Request().Context())
}

func wantsJSON(c echo.Context) bool {
	if cc, ok := c.(*appcontext.Context); ok {
		return cc.WantsJSON()
	}
	return appcontext.WantsJSON(c)
}

// pathID parses a numeric path parameter. Anything else is a 404.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(next string) string {
	const fallback = "/restaurants"
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// deleteFile removes an uploaded file. Failures are logged only.
func (h *Handlers) deleteFile(c echo.Context, key string) {
	if key == "" || h.storage == nil {
		return
	}
	if err := h.storage.Delete(c.Request().Context(), key); err != nil {
		slog.Warn("failed to delete upload", "key", key, "error", err)
	}
}
