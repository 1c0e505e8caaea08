package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialStore_Verify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.credentials.Verify(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, u.ID)

	_, err = f.credentials.Verify(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.credentials.Verify(ctx, "mallory", "hunter2")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestCredentialStore_Lookup(t *testing.T) {
	f := newFixture(t)

	u, err := f.credentials.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = f.credentials.Lookup(context.Background(), "bob")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCredentialStore_Confirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.credentials.Confirm(ctx, f.alice.ID, "alice")
	require.NoError(t, err)

	_, err = f.credentials.Confirm(ctx, f.alice.ID, "alice-renamed")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.credentials.Confirm(ctx, f.alice.ID+100, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCredentialStore_StoreFailure(t *testing.T) {
	s := NewCredentialStore(nil, brokenRepoManager{}, auth.BcryptHasher{Cost: bcrypt.MinCost}, time.Second)
	ctx := context.Background()

	_, err := s.Verify(ctx, "alice", "hunter2")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Confirm(ctx, 1, "alice")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.ErrorContains(t, err, "store unavailable")
}
