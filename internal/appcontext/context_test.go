// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package appcontext_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/localeats/internal/appcontext"
	"codeberg.org/oliverandrich/localeats/internal/htmx"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestContext_GetUser(t *testing.T) {
	user := &models.User{ID: 123, Username: "testuser"}
	ctx := &appcontext.Context{User: user}

	result := ctx.GetUser()

	assert.Equal(t, user, result)
	assert.Equal(t, int64(123), result.ID)
}

func TestContext_GetUser_Nil(t *testing.T) {
	ctx := &appcontext.Context{User: nil}

	result := ctx.GetUser()

	assert.Nil(t, result)
}

func TestContext_IsAuthenticated_True(t *testing.T) {
	ctx := &appcontext.Context{User: &models.User{ID: 1}}

	assert.True(t, ctx.IsAuthenticated())
}

func TestContext_IsAuthenticated_False(t *testing.T) {
	ctx := &appcontext.Context{User: nil}

	assert.False(t, ctx.IsAuthenticated())
}

func TestContext_WantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		want   bool
	}{
		{"plain form post", "", "", false},
		{"xhr", echo.HeaderXRequestedWith, "XMLHttpRequest", true},
		{"json body", echo.HeaderContentType, echo.MIMEApplicationJSON, true},
		{"json accept", echo.HeaderAccept, echo.MIMEApplicationJSON, true},
		{"html accept", echo.HeaderAccept, "text/html", false},
		{"htmx", htmx.HeaderRequest, "true", true},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/favorites/toggle/1", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			c := &appcontext.Context{Context: e.NewContext(req, httptest.NewRecorder()), Htmx: htmx.ParseRequest(req)}

			assert.Equal(t, tt.want, c.WantsJSON())
		})
	}
}
