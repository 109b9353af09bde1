// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/database"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of users created by NewTestUser.
const TestPassword = "password123"

// Epoch is the default start time of a Clock.
var Epoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewFileDB creates a SQLite database file in a temporary directory. Unlike
// NewTestDB it opens several connections, so concurrent writers really race.
func NewFileDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// HashPassword hashes with the minimum bcrypt cost to keep tests fast.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// NewTestUser creates an active user with TestPassword and email <username>@example.com.
func NewTestUser(t *testing.T, repo *repository.Repository, username string) *models.User {
	t.Helper()
	user := NewInactiveUser(t, repo, username)
	require.NoError(t, repo.ActivateUser(context.Background(), user.ID, Epoch))
	user.IsActive = true
	return user
}

var (
	testHashOnce sync.Once
	testHash     string
)

// NewInactiveUser creates a user that has not verified its email yet.
func NewInactiveUser(t *testing.T, repo *repository.Repository, username string) *models.User {
	t.Helper()
	testHashOnce.Do(func() { testHash = HashPassword(t, TestPassword) })
	user, err := repo.CreateUser(context.Background(), username, username+"@example.com", testHash, Epoch)
	require.NoError(t, err)
	return user
}

// NewTestRestaurant creates a restaurant without category.
func NewTestRestaurant(t *testing.T, repo *repository.Repository, name string) *models.Restaurant {
	t.Helper()
	rest := &models.Restaurant{Name: name, Address: "1 Main Street", CreatedAt: Epoch}
	require.NoError(t, repo.CreateRestaurant(context.Background(), rest))
	return rest
}

// NewTestReview creates a review by user for a restaurant.
func NewTestReview(t *testing.T, repo *repository.Repository, userID, restaurantID int64, rating int) *models.Review {
	t.Helper()
	review := &models.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		Rating:       rating,
		Content:      "tasty",
		CreatedAt:    Epoch,
	}
	require.NoError(t, repo.CreateReview(context.Background(), review))
	return review
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock starting at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormRequest creates a POST request with an url-encoded form body.
func NewFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}
