// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/auth"
	"codeberg.org/oliverandrich/localeats/internal/ctxkeys"
	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxkeys.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// CSSPath returns the path to the versioned CSS file.
func CSSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.CSSPath{}).(string); ok {
		return path
	}
	return "/static/css/styles.css"
}

// JSPath returns the path to the versioned JS file.
func JSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.JSPath{}).(string); ok {
		return path
	}
	return "/static/js/app.js"
}

// GetUser returns the authenticated user from context, or nil if not logged in.
func GetUser(ctx context.Context) *models.User {
	return auth.GetUser(ctx)
}

// WithFlash stores the flash message to show on the rendered page.
func WithFlash(ctx context.Context, f *session.Flash) context.Context {
	return context.WithValue(ctx, ctxkeys.Flash{}, f)
}

// Flash returns the flash message for the current page, if any.
func Flash(ctx context.Context) *session.Flash {
	if f, ok := ctx.Value(ctxkeys.Flash{}).(*session.Flash); ok {
		return f
	}
	return nil
}

// WithMediaURL stores the resolver from storage keys to public URLs.
func WithMediaURL(ctx context.Context, fn func(key string) string) context.Context {
	return context.WithValue(ctx, ctxkeys.MediaURL{}, fn)
}

// MediaURL resolves an uploaded file key. Empty keys stay empty.
func MediaURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	if fn, ok := ctx.Value(ctxkeys.MediaURL{}).(func(string) string); ok {
		return fn(key)
	}
	return "/media/" + strings.TrimPrefix(key, "/")
}

// FormatRating renders a rounded average, or a dash without reviews.
func FormatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *r)
}

// FormatDate renders a timestamp as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
