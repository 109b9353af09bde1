// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tokens_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/services/tokens"
	"codeberg.org/oliverandrich/localeats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerification(t *testing.T) (*tokens.VerificationManager, *repository.Repository, *testutil.Clock, *fakeNotifier) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	clock := testutil.NewClock()
	notifier := &fakeNotifier{}
	return tokens.NewVerificationManager(repo, notifier, 0, clock.Now), repo, clock, notifier
}

func TestVerificationIssue(t *testing.T) {
	mgr, repo, _, notifier := newVerification(t)
	ctx := context.Background()
	user := testutil.NewInactiveUser(t, repo, "alice")

	token, err := mgr.Issue(ctx, user)

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, sentMail{To: "alice@example.com", Token: token, Kind: "verification"}, notifier.sent[0])

	stored, err := repo.GetVerificationToken(ctx, tokens.Hash(token))
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestVerificationIssue_SendFailureKeepsToken(t *testing.T) {
	mgr, repo, _, notifier := newVerification(t)
	notifier.err = errSMTPDown
	ctx := context.Background()
	user := testutil.NewInactiveUser(t, repo, "alice")

	token, err := mgr.Issue(ctx, user)

	require.NoError(t, err)
	_, err = repo.GetVerificationToken(ctx, tokens.Hash(token))
	assert.NoError(t, err)
}

func TestVerificationIssue_ActiveUserRejected(t *testing.T) {
	mgr, repo, _, notifier := newVerification(t)
	user := testutil.NewTestUser(t, repo, "alice")

	_, err := mgr.Issue(context.Background(), user)

	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}

func TestVerificationConsume_Scenario(t *testing.T) {
	mgr, repo, clock, _ := newVerification(t)
	ctx := context.Background()
	alice := testutil.NewInactiveUser(t, repo, "alice")
	require.False(t, alice.IsActive)

	t1, err := mgr.Issue(ctx, alice)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	user, err := mgr.Consume(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	assert.True(t, user.IsActive)

	_, err = repo.GetVerificationToken(ctx, tokens.Hash(t1))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = mgr.Consume(ctx, t1)
	assert.ErrorIs(t, err, tokens.ErrNotFound)
}

func TestVerificationConsume_ExactlyAtWindowIsValid(t *testing.T) {
	mgr, repo, clock, _ := newVerification(t)
	ctx := context.Background()
	user := testutil.NewInactiveUser(t, repo, "alice")
	token, err := mgr.Issue(ctx, user)
	require.NoError(t, err)

	clock.Advance(tokens.VerificationTTL)
	_, err = mgr.Consume(ctx, token)

	assert.NoError(t, err)
}

func TestVerificationConsume_Expired(t *testing.T) {
	mgr, repo, clock, _ := newVerification(t)
	ctx := context.Background()
	user := testutil.NewInactiveUser(t, repo, "alice")
	token, err := mgr.Issue(ctx, user)
	require.NoError(t, err)

	clock.Advance(tokens.VerificationTTL + time.Second)
	_, err = mgr.Consume(ctx, token)

	assert.ErrorIs(t, err, tokens.ErrExpired)

	_, err = repo.GetVerificationToken(ctx, tokens.Hash(token))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = mgr.Consume(ctx, token)
	assert.ErrorIs(t, err, tokens.ErrNotFound)
}

func TestVerificationConsume_Unknown(t *testing.T) {
	mgr, _, _, _ := newVerification(t)

	_, err := mgr.Consume(context.Background(), "fabricated")

	assert.ErrorIs(t, err, tokens.ErrNotFound)
}

func TestVerificationConsume_Concurrent(t *testing.T) {
	_, repo := testutil.NewFileDB(t)
	mgr := tokens.NewVerificationManager(repo, &fakeNotifier{}, 0, testutil.NewClock().Now)
	ctx := context.Background()
	user := testutil.NewInactiveUser(t, repo, "alice")
	token, err := mgr.Issue(ctx, user)
	require.NoError(t, err)

	const workers = 20
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = mgr.Consume(ctx, token)
		}()
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, tokens.ErrNotFound):
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, notFound)
}

func TestVerificationPruneExpired(t *testing.T) {
	mgr, repo, clock, _ := newVerification(t)
	ctx := context.Background()
	old := testutil.NewInactiveUser(t, repo, "old-user")
	_, err := mgr.Issue(ctx, old)
	require.NoError(t, err)

	clock.Advance(tokens.VerificationTTL + time.Minute)
	fresh := testutil.NewInactiveUser(t, repo, "fresh-user")
	freshToken, err := mgr.Issue(ctx, fresh)
	require.NoError(t, err)

	n, err := mgr.PruneExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.GetVerificationToken(ctx, tokens.Hash(freshToken))
	assert.NoError(t, err)
}
