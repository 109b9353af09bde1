// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/repository"
	authsvc "codeberg.org/oliverandrich/localeats/internal/services/auth"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"codeberg.org/oliverandrich/localeats/internal/services/tokens"
	"codeberg.org/oliverandrich/localeats/internal/storage"
	"github.com/labstack/echo/v4"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Repo         *repository.Repository
	Auth         *authsvc.Service
	Verification *tokens.VerificationManager
	Reset        *tokens.ResetManager
	Sessions     *session.Manager
	Storage      storage.Storage
	Now          func() time.Time
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo         *repository.Repository
	auth         *authsvc.Service
	verification *tokens.VerificationManager
	reset        *tokens.ResetManager
	sessions     *session.Manager
	storage      storage.Storage
	now          func() time.Time
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Handlers{
		repo:         d.Repo,
		auth:         d.Auth,
		verification: d.Verification,
		reset:        d.Reset,
		sessions:     d.Sessions,
		storage:      d.Storage,
		now:          now,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home sends visitors to the restaurant listing.
func (h *Handlers) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/restaurants")
}
