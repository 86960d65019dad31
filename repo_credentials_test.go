package social

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsUpsertAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	expiresAt := time.Now().Add(2 * time.Hour).UTC()
	credential := &PlatformCredential{
		UserID:         userID,
		Platform:       PlatformInstagram,
		AccessToken:    "tok1",
		RefreshToken:   "refresh",
		ExpiresAt:      &expiresAt,
		PlatformUserID: "u1",
		Username:       "alice",
		ProfileData:    map[string]any{"id": "u1", "username": "alice"},
	}

	require.NoError(t, repo.Credentials().Upsert(ctx, credential))

	found, err := repo.Credentials().Get(ctx, userID, PlatformInstagram)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "tok1", found.AccessToken)
	assert.Equal(t, "refresh", found.RefreshToken)
	assert.Equal(t, "u1", found.PlatformUserID)
	assert.Equal(t, "alice", found.Username)
	require.NotNil(t, found.ExpiresAt)
}

func TestCredentialsGetAbsentReturnsNil(t *testing.T) {
	repo := setupTestRepo(t)

	found, err := repo.Credentials().Get(context.Background(), uuid.New(), PlatformTwitter)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCredentialsUpsertReplacesExistingRow(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Credentials().Upsert(ctx, &PlatformCredential{
		UserID:         userID,
		Platform:       PlatformInstagram,
		AccessToken:    "old-token",
		PlatformUserID: "u1",
		Username:       "alice",
	}))

	require.NoError(t, repo.Credentials().Upsert(ctx, &PlatformCredential{
		UserID:         userID,
		Platform:       PlatformInstagram,
		AccessToken:    "new-token",
		PlatformUserID: "u1",
		Username:       "alice_renamed",
	}))

	list, err := repo.Credentials().ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new-token", list[0].AccessToken)
	assert.Equal(t, "alice_renamed", list[0].Username)
}

func TestCredentialsStableID(t *testing.T) {
	userID := uuid.New()

	first := CredentialID(userID, PlatformInstagram)
	second := CredentialID(userID, PlatformInstagram)
	other := CredentialID(userID, PlatformTwitter)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestCredentialsListByUserIsScoped(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, repo.Credentials().Upsert(ctx, &PlatformCredential{
		UserID: alice, Platform: PlatformInstagram, AccessToken: "a", PlatformUserID: "u1",
	}))
	require.NoError(t, repo.Credentials().Upsert(ctx, &PlatformCredential{
		UserID: alice, Platform: PlatformTwitter, AccessToken: "b", PlatformUserID: "u2",
	}))
	require.NoError(t, repo.Credentials().Upsert(ctx, &PlatformCredential{
		UserID: bob, Platform: PlatformFacebook, AccessToken: "c", PlatformUserID: "u3",
	}))

	list, err := repo.Credentials().ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestCredentialsRemoveIsIdempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.Credentials().Upsert(ctx, &PlatformCredential{
		UserID: userID, Platform: PlatformInstagram, AccessToken: "tok", PlatformUserID: "u1",
	}))

	require.NoError(t, repo.Credentials().Remove(ctx, userID, PlatformInstagram))
	require.NoError(t, repo.Credentials().Remove(ctx, userID, PlatformInstagram))

	found, err := repo.Credentials().Get(ctx, userID, PlatformInstagram)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCredentialExpiresWithin(t *testing.T) {
	soon := time.Now().Add(time.Minute)
	later := time.Now().Add(time.Hour)

	assert.True(t, (&PlatformCredential{ExpiresAt: &soon}).ExpiresWithin(5*time.Minute))
	assert.False(t, (&PlatformCredential{ExpiresAt: &later}).ExpiresWithin(5*time.Minute))
	assert.False(t, (&PlatformCredential{}).ExpiresWithin(5*time.Minute))
}
