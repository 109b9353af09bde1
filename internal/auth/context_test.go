// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/localeats/internal/auth"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWithUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, auth.GetUser(ctx))
	assert.False(t, auth.IsAuthenticated(ctx))

	user := &models.User{ID: 7, Username: "alice"}
	ctx = auth.WithUser(ctx, user)

	assert.Same(t, user, auth.GetUser(ctx))
	assert.True(t, auth.IsAuthenticated(ctx))
}
