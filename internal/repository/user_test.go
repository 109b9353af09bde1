// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash", testutil.Epoch)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsActive)
	assert.True(t, testutil.Epoch.Equal(user.CreatedAt))
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "alice")

	_, err := repo.CreateUser(ctx, "alice", "other@example.com", "hash", testutil.Epoch)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.True(t, repository.IsDuplicate(err, "users.username"))
	assert.False(t, repository.IsDuplicate(err, "users.email"))
}

func TestCreateUser_DuplicateEmailIgnoresCase(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "alice")

	_, err := repo.CreateUser(ctx, "bob", "ALICE@example.com", "hash", testutil.Epoch)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.True(t, repository.IsDuplicate(err, "users.email"))
	assert.False(t, repository.IsDuplicate(err, "users.username"))
}

func TestGetUserByEmail_IgnoresCase(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	created := testutil.NewTestUser(t, repo, "alice")

	user, err := repo.GetUserByEmail(context.Background(), "Alice@Example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByUsername(context.Background(), "nobody")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsernameExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestUser(t, repo, "alice")

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEmailTaken_ExcludesSelf(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.NewTestUser(t, repo, "alice")
	bob := testutil.NewTestUser(t, repo, "bob")

	taken, err := repo.EmailTaken(ctx, alice.Email, alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.EmailTaken(ctx, alice.Email, bob.ID)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestActivateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewInactiveUser(t, repo, "alice")

	require.NoError(t, repo.ActivateUser(ctx, user.ID, testutil.Epoch))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestActivateUser_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.ActivateUser(context.Background(), 999, testutil.Epoch)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUserPasswordAndEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")

	require.NoError(t, repo.UpdateUserPassword(ctx, user.ID, "newhash", testutil.Epoch))
	require.NoError(t, repo.UpdateUserEmail(ctx, user.ID, "new@example.com", testutil.Epoch))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Equal(t, "new@example.com", got.Email)
}

func TestDeleteUser_Cascades(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice")
	rest := testutil.NewTestRestaurant(t, repo, "Noodle Bar")
	testutil.NewTestReview(t, repo, user.ID, rest.ID, 4)
	_, err := repo.ToggleFavorite(ctx, user.ID, rest.ID, testutil.Epoch)
	require.NoError(t, err)
	require.NoError(t, repo.CreateResetToken(ctx, user.ID, "hash", testutil.Epoch))

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	for _, table := range []string{"reviews", "favorites", "reset_tokens"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT count(*) FROM "+table))
		assert.Zero(t, n, table)
	}
}

func TestDeleteStaleInactiveUsers(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	active := testutil.NewTestUser(t, repo, "active")
	stale := testutil.NewInactiveUser(t, repo, "stale")
	pending := testutil.NewInactiveUser(t, repo, "pending")
	require.NoError(t, repo.CreateVerificationToken(ctx, pending.ID, "pending-hash", testutil.Epoch))

	n, err := repo.DeleteStaleInactiveUsers(ctx, testutil.Epoch.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.GetUserByID(ctx, stale.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetUserByID(ctx, active.ID)
	assert.NoError(t, err)
	_, err = repo.GetUserByID(ctx, pending.ID)
	assert.NoError(t, err)
}
