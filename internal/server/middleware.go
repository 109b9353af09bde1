// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/appcontext"
	"codeberg.org/oliverandrich/localeats/internal/auth"
	"codeberg.org/oliverandrich/localeats/internal/config"
	"codeberg.org/oliverandrich/localeats/internal/ctxkeys"
	"codeberg.org/oliverandrich/localeats/internal/htmx"
	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// LoginPath is where RequireAuth sends anonymous visitors.
const LoginPath = "/users/login"

func setupMiddleware(e *echo.Echo, cfg *config.Config, assets *appcontext.Assets, mediaURL func(string) string, sessions *session.Manager, users UserLoader) {
	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(staticCacheHeaders())
	e.Use(csrfMiddleware(cfg))
	e.Use(csrfToContext())
	e.Use(customContext(assets, mediaURL))
	e.Use(i18nMiddleware())
	e.Use(AuthMiddleware(sessions, users))
}

// csrfMiddleware configures CSRF protection.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// csrfToContext copies the CSRF token to the request context.
func csrfToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), ctxkeys.CSRFToken{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// requestLogger returns middleware that logs requests using slog.
// Static files and health checks are not logged.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || strings.HasPrefix(p, "/static/")
		},
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UserLoader loads the account behind a session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware resolves the session cookie to an active user and stores it
// on the custom context and the request context. Stale sessions are cleared.
func AuthMiddleware(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			user, err := users.GetUserByID(c.Request().Context(), data.UserID)
			if err != nil || !user.IsActive {
				slog.Debug("session_dropped", "user_id", data.UserID, "error", err)
				c.SetCookie(sessions.Clear())
				return next(c)
			}

			c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), user)))
			if cc, ok := c.(*appcontext.Context); ok {
				cc.User = user
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *models.User {
	if cc, ok := c.(*appcontext.Context); ok && cc.User != nil {
		return cc.User
	}
	return auth.GetUser(c.Request().Context())
}

// RequireAuth redirects anonymous visitors to the login page, remembering
// the requested page in the next parameter.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if currentUser(c) != nil {
				return next(c)
			}

			target := LoginPath
			if r := c.Request(); r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			htmx.Redirect(c.Response(), c.Request(), target)
			return nil
		}
	}
}

// rateLimit allows perMinute requests per client IP with the same burst.
func rateLimit(perMinute int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Every(time.Minute / time.Duration(perMinute)),
		Burst:     perMinute,
		ExpiresIn: 10 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method != http.MethodPost
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			slog.Warn("rate_limited", "ip", identifier, "path", c.Request().URL.Path)
			return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(c.Request().Context(), "error_rate_limited"))
		},
	})
}

// staticCacheHeaders adds cache headers for static assets and uploads.
func staticCacheHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			switch {
			case strings.HasPrefix(r.URL.Path, "/static/") && isVersionedAsset(r.URL.Query().Get("v")):
				// Versioned assets get immutable caching
				c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			case strings.HasPrefix(r.URL.Path, "/static/"):
				c.Response().Header().Set("Cache-Control", "no-cache")
			case strings.HasPrefix(r.URL.Path, "/media/"):
				// Uploads are stored under random names and never rewritten
				c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			return next(c)
		}
	}
}

// isVersionedAsset checks for an 8 character lowercase hex version.
func isVersionedAsset(version string) bool {
	if len(version) != 8 {
		return false
	}
	for _, c := range version {
		isDigit := c >= '0' && c <= '9'
		isHexLetter := c >= 'a' && c <= 'f'
		if !isDigit && !isHexLetter {
			return false
		}
	}
	return true
}
