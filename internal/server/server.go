// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/assets"
	"codeberg.org/oliverandrich/localeats/internal/config"
	"codeberg.org/oliverandrich/localeats/internal/database"
	"codeberg.org/oliverandrich/localeats/internal/handlers"
	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	authsvc "codeberg.org/oliverandrich/localeats/internal/services/auth"
	"codeberg.org/oliverandrich/localeats/internal/services/email"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"codeberg.org/oliverandrich/localeats/internal/services/tokens"
	"codeberg.org/oliverandrich/localeats/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// authRateLimit is the number of login, signup and reset POSTs allowed per
// client IP and minute.
const authRateLimit = 10

// Now is the server clock.
func Now() time.Time {
	return time.Now().UTC()
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(&cfg.Log)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Email
	transport, err := email.NewTransport(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to configure email: %w", err)
	}

	// Uploads
	st, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}

	e, err := New(cfg, db, transport, st)
	if err != nil {
		return err
	}

	// Start server
	return startWithGracefulShutdown(e, cfg)
}

// New wires services, middleware and routes into an Echo instance.
func New(cfg *config.Config, db *sqlx.DB, transport email.Transport, st storage.Storage) (*echo.Echo, error) {
	repo := repository.New(db)
	mailer := email.NewService(transport, cfg.Server.BaseURL, cfg.Auth.VerificationTTL, cfg.Auth.ResetTTL)

	verification := tokens.NewVerificationManager(repo, mailer, cfg.Auth.VerificationTTL, Now)
	reset := tokens.NewResetManager(repo, mailer, cfg.Auth.ResetTTL, Now)

	sessions, err := session.NewManager(&cfg.Session, strings.HasPrefix(cfg.Server.BaseURL, "https://"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	h := handlers.New(handlers.Deps{
		Repo:         repo,
		Auth:         authsvc.NewService(repo, verification, Now),
		Verification: verification,
		Reset:        reset,
		Sessions:     sessions,
		Storage:      st,
		Now:          Now,
	})

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.ErrorHandler

	// Middleware
	setupMiddleware(e, cfg, findAssets(), st.URL, sessions, repo)

	// Routes
	setupRoutes(e, h, st)

	return e, nil
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, st storage.Storage) {
	// Static files
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static", assets.FileServer())))
	if local, ok := st.(*storage.LocalStorage); ok {
		e.Static(local.URLPrefix(), local.Dir())
	}

	e.GET("/health", h.Health)
	e.GET("/", h.Home)

	requireAuth := RequireAuth()
	limited := rateLimit(authRateLimit)

	// Accounts
	users := e.Group("/users")
	users.GET("/login", h.LoginPage)
	users.POST("/login", h.Login, limited)
	users.POST("/logout", h.Logout)
	users.GET("/signup", h.SignupPage)
	users.POST("/signup", h.Signup, limited)
	users.GET("/verify-email/:token", h.VerifyEmail)
	users.GET("/forgot-password", h.ForgotPasswordPage)
	users.POST("/forgot-password", h.ForgotPassword, limited)
	users.GET("/reset-password/:token", h.ResetPasswordPage)
	users.POST("/reset-password/:token", h.ResetPassword, limited)
	users.GET("/mypage", h.MyPage, requireAuth)
	users.GET("/edit", h.EditProfilePage, requireAuth)
	users.POST("/edit", h.EditProfile, requireAuth)
	users.GET("/delete-account", h.DeleteAccountPage, requireAuth)
	users.POST("/delete-account", h.DeleteAccount, requireAuth)

	// Restaurants
	e.GET("/restaurants", h.ListRestaurants)
	e.GET("/restaurants/create", h.CreateRestaurantPage, requireAuth)
	e.POST("/restaurants/create", h.CreateRestaurant, requireAuth)
	e.GET("/restaurants/:id", h.RestaurantDetail)

	// Reviews
	e.GET("/reviews", h.ListReviews)
	e.GET("/reviews/create/:restaurant_id", h.CreateReviewPage, requireAuth)
	e.POST("/reviews/create/:restaurant_id", h.CreateReview, requireAuth)
	e.GET("/reviews/:id/edit", h.EditReviewPage, requireAuth)
	e.POST("/reviews/:id/edit", h.EditReview, requireAuth)
	e.POST("/reviews/:id/delete", h.DeleteReview, requireAuth)

	// Favorites
	e.GET("/favorites", h.ListFavorites, requireAuth)
	e.POST("/favorites/toggle/:restaurant_id", h.ToggleFavorite, requireAuth)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	// Setup TLS
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	// Channel for server errors
	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		// Plain HTTP on configured port
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		// HTTPS on :443
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		// HTTP redirect server on :80
		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		// HTTPS on configured port
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown main server
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	// Shutdown HTTP redirect server if running
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
